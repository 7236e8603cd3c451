package api

import (
	"net/http"
	"strconv"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"
	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler serves the dashboard, the past list and the workout detail.
type WorkoutHandler struct {
	workoutService   service.WorkoutService
	templateService  service.TemplateService
	analyticsService service.AnalyticsService
}

func NewWorkoutHandler(workoutService service.WorkoutService, templateService service.TemplateService, analyticsService service.AnalyticsService) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService:   workoutService,
		templateService:  templateService,
		analyticsService: analyticsService,
	}
}

type UpdateStatusRequest struct {
	Status domain.WorkoutStatus `json:"status" binding:"required"`
}

type CreateTemplateFromWorkoutRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *WorkoutHandler) Dashboard(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	d, err := h.workoutService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err, "load the dashboard")
		return
	}
	c.JSON(http.StatusOK, d)
}

// ListWorkouts godoc
// @Summary List workouts
// @Description Workouts with status defaulting applied. order is asc or desc (default), status filters.
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param order query string false "asc or desc"
// @Param status query string false "scheduled or completed"
// @Param limit query int false "Maximum number of workouts"
// @Success 200 {array} domain.Workout
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	opts := service.ListOptions{
		Status: domain.WorkoutStatus(c.Query("status")),
		Order:  repository.Descending,
	}
	switch c.DefaultQuery("order", "desc") {
	case "asc":
		opts.Order = repository.Ascending
	case "desc":
	default:
		abortWithError(c, http.StatusBadRequest, "order must be asc or desc")
		return
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = limit
	}

	workouts, err := h.workoutService.List(c.Request.Context(), userID, opts)
	if err != nil {
		abortWithServiceError(c, err, "retrieve workouts")
		return
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	c.JSON(http.StatusOK, workouts)
}

func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	w, err := h.workoutService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err, "retrieve workout")
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WorkoutHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.workoutService.UpdateStatus(c.Request.Context(), userID, c.Param("id"), req.Status); err != nil {
		abortWithServiceError(c, err, "update workout status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// SaveSets writes the detail editor's per-set values in one go.
func (h *WorkoutHandler) SaveSets(c *gin.Context) {
	var req service.SetsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	w, err := h.workoutService.SaveSets(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		abortWithServiceError(c, err, "save sets")
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.workoutService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		abortWithServiceError(c, err, "delete workout")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateTemplate saves the workout's exercises as a new template.
func (h *WorkoutHandler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateFromWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	t, err := h.templateService.CreateFromWorkout(c.Request.Context(), userID, c.Param("id"), req.Name)
	if err != nil {
		abortWithServiceError(c, err, "create template")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": t, "redirect": "/templates"})
}

func (h *WorkoutHandler) Summary(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	s, err := h.analyticsService.WorkoutSummary(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err, "summarize workout")
		return
	}
	c.JSON(http.StatusOK, s)
}
