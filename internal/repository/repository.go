package repository

import (
	"alcyxob/liftlog/internal/domain"
	"context"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
	ErrInvalid      = RepositoryError("invalid record")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ToOne normalizes a to-one relation that a store returned as a list
// (a Mongo $lookup, for example) into a single value or nil.
func ToOne[T any](list []T) *T {
	if len(list) == 0 {
		return nil
	}
	v := list[0]
	return &v
}

// SortOrder orders workout lists by date.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// WorkoutFilter narrows a workout listing. Status matches the resolved
// status: a workout stored without status counts as scheduled when its date
// is not before Today and as completed otherwise.
type WorkoutFilter struct {
	Status domain.WorkoutStatus // empty matches every workout
	Today  domain.Date
	Order  SortOrder
	Limit  int // 0 means no limit
}

// Matches reports whether w passes the status part of the filter.
func (f WorkoutFilter) Matches(w *domain.Workout) bool {
	if f.Status == "" {
		return true
	}
	return domain.ResolveStatus(w.Status, w.Date, f.Today) == f.Status
}

// SetsUpdate is a bulk edit of a workout's logged values. Sets are upserted
// by ID; a set without ID is inserted under its WorkoutExerciseID.
type SetsUpdate struct {
	Date   *domain.Date
	Status *domain.WorkoutStatus
	Sets   []domain.WorkoutSet
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (string, error) // ErrConflict on a taken email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// Confirm marks the user's email address as confirmed.
	Confirm(ctx context.Context, id string) error
}

// ExerciseRepository defines the interface for interacting with the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	// ListVisible returns the shared catalog plus userID's custom exercises, by name.
	ListVisible(ctx context.Context, userID string) ([]domain.Exercise, error)
	// Seed inserts shared catalog entries whose name is not taken yet and
	// returns how many were added.
	Seed(ctx context.Context, exercises []domain.Exercise) (int, error)
}

// WorkoutRepository defines the interface for interacting with workouts and
// their nested exercises and sets. Every call is scoped to the owning user
// and every multi-row write is atomic.
type WorkoutRepository interface {
	// Create stores the workout with its exercises and their sets.
	Create(ctx context.Context, workout *domain.Workout) (string, error)
	// GetByID loads the workout with exercises, sets and catalog entries.
	GetByID(ctx context.Context, userID, id string) (*domain.Workout, error)
	List(ctx context.Context, userID string, filter WorkoutFilter) ([]domain.Workout, error)
	// ReplaceExercises sets the date and swaps the whole exercise list.
	ReplaceExercises(ctx context.Context, userID, id string, date domain.Date, exercises []domain.WorkoutExercise) error
	UpdateStatus(ctx context.Context, userID, id string, status domain.WorkoutStatus) error
	SaveSets(ctx context.Context, userID, id string, update SetsUpdate) error
	// Delete removes the workout and everything nested in it.
	Delete(ctx context.Context, userID, id string) error
}

// TemplateRepository defines the interface for interacting with templates.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.Template) (string, error)
	GetByID(ctx context.Context, userID, id string) (*domain.Template, error)
	// List returns the user's templates by name, exercises included.
	List(ctx context.Context, userID string) ([]domain.Template, error)
	ReplaceExercises(ctx context.Context, userID, id string, exercises []domain.TemplateExercise) error
	Rename(ctx context.Context, userID, id, name string) error
	Delete(ctx context.Context, userID, id string) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Users     UserRepository
	Exercises ExerciseRepository
	Workouts  WorkoutRepository
	Templates TemplateRepository
}
