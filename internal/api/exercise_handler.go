package api

import (
	"net/http"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating a custom exercise.
type CreateExerciseRequest struct {
	Name         string `json:"name" binding:"required"`
	TargetMuscle string `json:"targetMuscle"` // e.g., "Chest", "Legs"
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a custom exercise
// @Description Adds an exercise visible only to the authenticated user.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} domain.Exercise "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "An exercise with this name already exists"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateCustom(c.Request.Context(), userID, req.Name, req.TargetMuscle)
	if err != nil {
		abortWithServiceError(c, err, "create exercise")
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// ListExercises godoc
// @Summary List the exercise catalog
// @Description Global exercises plus the user's custom ones by name; q filters name or target muscle.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search term"
// @Success 200 {array} domain.Exercise "List of exercises"
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	exercises, err := h.exerciseService.List(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		abortWithServiceError(c, err, "retrieve exercises")
		return
	}
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	c.JSON(http.StatusOK, exercises)
}

// GetExercise godoc
// @Summary Get one exercise
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} domain.Exercise
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err, "retrieve exercise")
		return
	}
	c.JSON(http.StatusOK, exercise)
}
