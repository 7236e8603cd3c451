package api

import (
	"net/http"

	"alcyxob/liftlog/internal/planner"
	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler serves the plan builder. Drafts live on the client; every
// request carries the whole draft.
type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type ApplyRequest struct {
	Draft planner.Draft `json:"draft"`
	Op    planner.Op    `json:"op"`
}

// Draft godoc
// @Summary Initial builder state
// @Description Empty draft for today, or one imported from a template or workout. At most one import parameter.
// @Tags Plan
// @Produce json
// @Security BearerAuth
// @Param importTemplate query string false "Template id to plan a new workout from"
// @Param importWorkout query string false "Workout id to edit"
// @Param editTemplate query string false "Template id to edit"
// @Success 200 {object} planner.Draft
// @Failure 400 {object} gin.H "More than one import parameter"
// @Failure 404 {object} gin.H "Source not found"
// @Router /plan/draft [get]
func (h *PlanHandler) Draft(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	d, err := h.planService.Draft(c.Request.Context(), userID, service.DraftSource{
		ImportTemplate: c.Query("importTemplate"),
		ImportWorkout:  c.Query("importWorkout"),
		EditTemplate:   c.Query("editTemplate"),
	})
	if err != nil {
		abortWithServiceError(c, err, "build draft")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *PlanHandler) Apply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	d, err := h.planService.Apply(c.Request.Context(), userID, req.Draft, req.Op)
	if err != nil {
		abortWithServiceError(c, err, "edit draft")
		return
	}
	c.JSON(http.StatusOK, d)
}

// Commit saves the draft as a workout or into its template.
func (h *PlanHandler) Commit(c *gin.Context) {
	var req service.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	res, err := h.planService.Commit(c.Request.Context(), userID, req)
	if err != nil {
		abortWithServiceError(c, err, "save plan")
		return
	}
	c.JSON(http.StatusCreated, res)
}
