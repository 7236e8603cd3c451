package api

import (
	"errors"
	"net/http"

	"alcyxob/liftlog/internal/planner"
	"alcyxob/liftlog/internal/runner"
	"alcyxob/liftlog/internal/service"
	"alcyxob/liftlog/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var errorStatuses = []struct {
	err  error
	code int
}{
	{service.ErrWorkoutNotFound, http.StatusNotFound},
	{service.ErrTemplateNotFound, http.StatusNotFound},
	{service.ErrExerciseNotFound, http.StatusNotFound},
	{service.ErrNoRunnerSession, http.StatusNotFound},

	{service.ErrInvalidInput, http.StatusBadRequest},
	{service.ErrInvalidStatus, http.StatusBadRequest},
	{service.ErrAmbiguousImport, http.StatusBadRequest},
	{service.ErrInvalidMode, http.StatusBadRequest},
	{service.ErrMissingSource, http.StatusBadRequest},
	{service.ErrTemplateNameRequired, http.StatusBadRequest},
	{service.ErrValidationFailed, http.StatusBadRequest},
	{service.ErrNothingToRun, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusBadRequest},
	{planner.ErrIndexOutOfRange, http.StatusBadRequest},
	{planner.ErrInvalidSetCount, http.StatusBadRequest},
	{planner.ErrInvalidValue, http.StatusBadRequest},
	{planner.ErrEmptyDraft, http.StatusBadRequest},
	{planner.ErrUnknownOp, http.StatusBadRequest},
	{runner.ErrInvalidValue, http.StatusBadRequest},

	{service.ErrAuthenticationFailed, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrTokenRevoked, http.StatusUnauthorized},
	{service.ErrEmailNotConfirmed, http.StatusForbidden},

	{service.ErrUserAlreadyExists, http.StatusConflict},
	{service.ErrExerciseExists, http.StatusConflict},
	{runner.ErrFinished, http.StatusConflict},

	{storage.ErrNotConfigured, http.StatusServiceUnavailable},
	{service.ErrMailUnavailable, http.StatusServiceUnavailable},
}

// abortWithServiceError maps a service error onto its HTTP status. Unknown
// errors are logged and reported as 500 without their details.
func abortWithServiceError(c *gin.Context, err error, action string) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			abortWithError(c, es.code, err.Error())
			return
		}
	}
	log.WithError(err).WithField("path", c.Request.URL.Path).Errorf("%s failed", action)
	abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred while trying to "+action)
}
