package repository

import (
	"fmt"
	"math"

	"alcyxob/liftlog/internal/domain"

	"github.com/google/uuid"
)

// PrepareWorkoutRows assigns ids and parent keys to a workout's exercises and
// sets before they are written, and checks every logged value.
func PrepareWorkoutRows(workoutID string, exercises []domain.WorkoutExercise) error {
	for i := range exercises {
		we := &exercises[i]
		if we.ExerciseID == "" {
			return fmt.Errorf("%w: exercise %d has no catalog entry", ErrInvalid, i+1)
		}
		we.ID = uuid.NewString()
		we.WorkoutID = workoutID
		for j := range we.Sets {
			s := &we.Sets[j]
			if err := checkSet(s); err != nil {
				return err
			}
			s.ID = uuid.NewString()
			s.WorkoutExerciseID = we.ID
		}
	}
	return nil
}

// PrepareTemplateRows assigns ids to template rows before they are written.
func PrepareTemplateRows(templateID string, exercises []domain.TemplateExercise) error {
	for i := range exercises {
		te := &exercises[i]
		if te.ExerciseID == "" {
			return fmt.Errorf("%w: exercise %d has no catalog entry", ErrInvalid, i+1)
		}
		if (te.Sets != nil && *te.Sets < 0) || (te.Reps != nil && *te.Reps < 0) {
			return fmt.Errorf("%w: negative sets or reps", ErrInvalid)
		}
		te.ID = uuid.NewString()
		te.TemplateID = templateID
	}
	return nil
}

// PrepareSetUpserts resolves a bulk set edit against the workout's current
// rows. existing maps set id to its workout exercise id; exerciseIDs holds
// the workout's exercise ids. Known sets keep their parent, new sets must
// name one of the workout's exercises.
func PrepareSetUpserts(existing map[string]string, exerciseIDs map[string]bool, sets []domain.WorkoutSet) ([]domain.WorkoutSet, error) {
	out := make([]domain.WorkoutSet, 0, len(sets))
	for _, s := range sets {
		if err := checkSet(&s); err != nil {
			return nil, err
		}
		if parent, ok := existing[s.ID]; ok {
			if s.WorkoutExerciseID != "" && s.WorkoutExerciseID != parent {
				return nil, fmt.Errorf("%w: set %s cannot move to another exercise", ErrInvalid, s.ID)
			}
			s.WorkoutExerciseID = parent
		} else {
			if !exerciseIDs[s.WorkoutExerciseID] {
				return nil, fmt.Errorf("%w: set %q does not belong to this workout", ErrNotFound, s.ID)
			}
			if s.ID == "" {
				s.ID = uuid.NewString()
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func checkSet(s *domain.WorkoutSet) error {
	if s.Reps < 0 || s.Weight < 0 || math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) {
		return fmt.Errorf("%w: reps and weight must be finite and not negative", ErrInvalid)
	}
	if s.IntensityType == "" {
		s.IntensityType = domain.DefaultIntensityType
	}
	return nil
}
