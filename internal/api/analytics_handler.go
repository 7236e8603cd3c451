package api

import (
	"net/http"

	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the volume chart and the CSV export.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	exportService    service.ExportService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService, exportService service.ExportService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, exportService: exportService}
}

// Volume godoc
// @Summary Training volume by date
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param muscle query string false "Muscle group, or all"
// @Success 200 {object} service.VolumeReport
// @Router /analytics/volume [get]
func (h *AnalyticsHandler) Volume(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	report, err := h.analyticsService.Volume(c.Request.Context(), userID, c.Query("muscle"))
	if err != nil {
		abortWithServiceError(c, err, "compute volume")
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportWorkouts godoc
// @Summary Export every set as CSV
// @Description Uploads the CSV to object storage and returns a presigned download link.
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.Export
// @Failure 503 {object} gin.H "Object storage is not configured"
// @Router /exports/workouts [post]
func (h *AnalyticsHandler) ExportWorkouts(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	exp, err := h.exportService.ExportWorkouts(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err, "export workouts")
		return
	}
	c.JSON(http.StatusCreated, exp)
}
