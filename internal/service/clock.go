package service

import (
	"errors"
	"fmt"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"
)

// ErrInvalidInput marks requests the stores rejected as malformed.
var ErrInvalidInput = errors.New("invalid input")

// Clock returns the current calendar day.
type Clock func() domain.Date

// ClockIn returns a Clock for the given timezone.
func ClockIn(loc *time.Location) Clock {
	return func() domain.Date {
		return domain.DateOf(time.Now().In(loc))
	}
}

// FixedClock always returns day.
func FixedClock(day domain.Date) Clock {
	return func() domain.Date { return day }
}

// mapRepoErr translates repository errors into service errors.
func mapRepoErr(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return err
}
