package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/google/uuid"
)

type workoutRepo struct {
	db *db
}

func (r *workoutRepo) Create(_ context.Context, workout *domain.Workout) (string, error) {
	if workout.UserID == "" || workout.Date.IsZero() {
		return "", errors.New("workout requires a user and a date")
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id := uuid.NewString()
	exercises := cloneWorkoutExercises(workout.Exercises)
	if err := repository.PrepareWorkoutRows(id, exercises); err != nil {
		return "", err
	}
	if err := r.checkCatalog(workout.UserID, exercises); err != nil {
		return "", err
	}

	workout.ID = id
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	workout.Exercises = exercises
	r.insertRows(exercises)

	stored := *workout
	stored.Exercises = nil
	r.db.workouts[id] = stored
	return id, nil
}

func (r *workoutRepo) GetByID(_ context.Context, userID, id string) (*domain.Workout, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	w, ok := r.db.workouts[id]
	if !ok || w.UserID != userID {
		return nil, repository.ErrNotFound
	}
	w = r.db.loadWorkout(w)
	return &w, nil
}

func (r *workoutRepo) List(_ context.Context, userID string, filter repository.WorkoutFilter) ([]domain.Workout, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]domain.Workout, 0)
	for _, w := range r.db.workouts {
		if w.UserID == userID && filter.Matches(&w) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			if filter.Order == repository.Descending {
				return out[i].Date > out[j].Date
			}
			return out[i].Date < out[j].Date
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	for i := range out {
		out[i] = r.db.loadWorkout(out[i])
	}
	return out, nil
}

func (r *workoutRepo) ReplaceExercises(_ context.Context, userID, id string, date domain.Date, exercises []domain.WorkoutExercise) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	w, ok := r.db.workouts[id]
	if !ok || w.UserID != userID {
		return repository.ErrNotFound
	}
	rows := cloneWorkoutExercises(exercises)
	if err := repository.PrepareWorkoutRows(id, rows); err != nil {
		return err
	}
	if err := r.checkCatalog(userID, rows); err != nil {
		return err
	}

	r.db.deleteWorkoutRows(id)
	r.insertRows(rows)
	if !date.IsZero() {
		w.Date = date
	}
	w.UpdatedAt = time.Now().UTC()
	r.db.workouts[id] = w
	return nil
}

func (r *workoutRepo) UpdateStatus(_ context.Context, userID, id string, status domain.WorkoutStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	w, ok := r.db.workouts[id]
	if !ok || w.UserID != userID {
		return repository.ErrNotFound
	}
	w.Status = status
	w.UpdatedAt = time.Now().UTC()
	r.db.workouts[id] = w
	return nil
}

func (r *workoutRepo) SaveSets(_ context.Context, userID, id string, update repository.SetsUpdate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	w, ok := r.db.workouts[id]
	if !ok || w.UserID != userID {
		return repository.ErrNotFound
	}

	exerciseIDs := make(map[string]bool)
	for weID, we := range r.db.workoutExercises {
		if we.WorkoutID == id {
			exerciseIDs[weID] = true
		}
	}
	existing := make(map[string]string)
	for sid, s := range r.db.workoutSets {
		if exerciseIDs[s.WorkoutExerciseID] {
			existing[sid] = s.WorkoutExerciseID
		}
	}
	for _, s := range update.Sets {
		if _, ok := existing[s.ID]; !ok && s.ID != "" {
			if _, taken := r.db.workoutSets[s.ID]; taken {
				return fmt.Errorf("%w: set %s belongs to another workout", repository.ErrNotFound, s.ID)
			}
		}
	}
	sets, err := repository.PrepareSetUpserts(existing, exerciseIDs, update.Sets)
	if err != nil {
		return err
	}

	for _, s := range sets {
		r.db.workoutSets[s.ID] = s
	}
	if update.Date != nil {
		w.Date = *update.Date
	}
	if update.Status != nil {
		w.Status = *update.Status
	}
	w.UpdatedAt = time.Now().UTC()
	r.db.workouts[id] = w
	return nil
}

func (r *workoutRepo) Delete(_ context.Context, userID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	w, ok := r.db.workouts[id]
	if !ok || w.UserID != userID {
		return repository.ErrNotFound
	}
	r.db.deleteWorkoutRows(id)
	delete(r.db.workouts, id)
	return nil
}

// checkCatalog enforces that every row points at an exercise the user can see.
func (r *workoutRepo) checkCatalog(userID string, rows []domain.WorkoutExercise) error {
	for _, we := range rows {
		e, ok := r.db.exercises[we.ExerciseID]
		if !ok || !e.VisibleTo(userID) {
			return fmt.Errorf("%w: unknown exercise %s", repository.ErrInvalid, we.ExerciseID)
		}
	}
	return nil
}

func (r *workoutRepo) insertRows(rows []domain.WorkoutExercise) {
	for _, we := range rows {
		for _, s := range we.Sets {
			r.db.workoutSets[s.ID] = s
		}
		we.Sets = nil
		we.Exercise = nil
		r.db.workoutExercises[we.ID] = we
	}
}

func cloneWorkoutExercises(in []domain.WorkoutExercise) []domain.WorkoutExercise {
	out := make([]domain.WorkoutExercise, len(in))
	for i, we := range in {
		we.Sets = append([]domain.WorkoutSet(nil), we.Sets...)
		out[i] = we
	}
	return out
}
