// Package memory is an in-process implementation of the repository
// interfaces. All four repositories share one lock, so every write is
// validated in full before anything is changed.
package memory

import (
	"sort"
	"sync"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"
)

type db struct {
	mu sync.RWMutex

	users             map[string]domain.User
	exercises         map[string]domain.Exercise
	workouts          map[string]domain.Workout
	workoutExercises  map[string]domain.WorkoutExercise
	workoutSets       map[string]domain.WorkoutSet
	templates         map[string]domain.Template
	templateExercises map[string]domain.TemplateExercise
}

// NewStore returns empty repositories backed by process memory.
func NewStore() *repository.Store {
	d := &db{
		users:             make(map[string]domain.User),
		exercises:         make(map[string]domain.Exercise),
		workouts:          make(map[string]domain.Workout),
		workoutExercises:  make(map[string]domain.WorkoutExercise),
		workoutSets:       make(map[string]domain.WorkoutSet),
		templates:         make(map[string]domain.Template),
		templateExercises: make(map[string]domain.TemplateExercise),
	}
	return &repository.Store{
		Users:     &userRepo{d},
		Exercises: &exerciseRepo{d},
		Workouts:  &workoutRepo{d},
		Templates: &templateRepo{d},
	}
}

func (d *db) ref(exerciseID string) *domain.ExerciseRef {
	e, ok := d.exercises[exerciseID]
	if !ok {
		return nil
	}
	r := e.Ref()
	return &r
}

// loadWorkout assembles the nested view of a stored workout. Callers hold the lock.
func (d *db) loadWorkout(w domain.Workout) domain.Workout {
	w.Exercises = nil
	for _, we := range d.workoutExercises {
		if we.WorkoutID != w.ID {
			continue
		}
		we.Exercise = d.ref(we.ExerciseID)
		we.Sets = nil
		for _, s := range d.workoutSets {
			if s.WorkoutExerciseID == we.ID {
				we.Sets = append(we.Sets, s)
			}
		}
		sortSets(we.Sets)
		w.Exercises = append(w.Exercises, we)
	}
	sortExercises(w.Exercises)
	return w
}

func (d *db) loadTemplate(t domain.Template) domain.Template {
	t.Exercises = nil
	for _, te := range d.templateExercises {
		if te.TemplateID == t.ID {
			te = te.Clone()
			te.Exercise = d.ref(te.ExerciseID)
			t.Exercises = append(t.Exercises, te)
		}
	}
	sort.SliceStable(t.Exercises, func(i, j int) bool {
		if t.Exercises[i].Order != t.Exercises[j].Order {
			return t.Exercises[i].Order < t.Exercises[j].Order
		}
		return t.Exercises[i].ID < t.Exercises[j].ID
	})
	return t
}

// deleteWorkoutRows removes a workout's exercises and sets. Callers hold the write lock.
func (d *db) deleteWorkoutRows(workoutID string) {
	for id, we := range d.workoutExercises {
		if we.WorkoutID != workoutID {
			continue
		}
		for sid, s := range d.workoutSets {
			if s.WorkoutExerciseID == id {
				delete(d.workoutSets, sid)
			}
		}
		delete(d.workoutExercises, id)
	}
}

func (d *db) deleteTemplateRows(templateID string) {
	for id, te := range d.templateExercises {
		if te.TemplateID == templateID {
			delete(d.templateExercises, id)
		}
	}
}

// map iteration order is random, so ties fall back to the id
func sortExercises(exercises []domain.WorkoutExercise) {
	sort.SliceStable(exercises, func(i, j int) bool {
		if exercises[i].Order != exercises[j].Order {
			return exercises[i].Order < exercises[j].Order
		}
		return exercises[i].ID < exercises[j].ID
	})
}

func sortSets(sets []domain.WorkoutSet) {
	sort.SliceStable(sets, func(i, j int) bool {
		if sets[i].SetNumber != sets[j].SetNumber {
			return sets[i].SetNumber < sets[j].SetNumber
		}
		return sets[i].ID < sets[j].ID
	})
}
