package api

import (
	"context"
	"net/http"

	"alcyxob/liftlog/internal/runner"
	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

// RunnerHandler steps through a workout one set at a time.
type RunnerHandler struct {
	runnerService service.RunnerService
}

func NewRunnerHandler(runnerService service.RunnerService) *RunnerHandler {
	return &RunnerHandler{runnerService: runnerService}
}

type runnerStep func(ctx context.Context, userID, workoutID string) (*service.RunnerState, error)

func (h *RunnerHandler) respond(c *gin.Context, action string, step runnerStep) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	state, err := step(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err, action)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Start opens or resumes the runner for a workout.
func (h *RunnerHandler) Start(c *gin.Context) {
	h.respond(c, "start workout", h.runnerService.Start)
}

func (h *RunnerHandler) State(c *gin.Context) {
	h.respond(c, "load runner", h.runnerService.State)
}

func (h *RunnerHandler) Advance(c *gin.Context) {
	h.respond(c, "advance", h.runnerService.Advance)
}

func (h *RunnerHandler) Back(c *gin.Context) {
	h.respond(c, "go back", h.runnerService.Back)
}

func (h *RunnerHandler) Finish(c *gin.Context) {
	h.respond(c, "finish workout", h.runnerService.Finish)
}

// EditCurrent overwrites reps, weight or notes of the current set.
func (h *RunnerHandler) EditCurrent(c *gin.Context) {
	var edit runner.SetEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	h.respond(c, "edit set", func(ctx context.Context, userID, workoutID string) (*service.RunnerState, error) {
		return h.runnerService.Edit(ctx, userID, workoutID, edit)
	})
}

func (h *RunnerHandler) Abandon(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.runnerService.Abandon(c.Request.Context(), userID, c.Param("id")); err != nil {
		abortWithServiceError(c, err, "abandon workout")
		return
	}
	c.Status(http.StatusNoContent)
}
