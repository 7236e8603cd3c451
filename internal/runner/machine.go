// Package runner steps a user through a workout one set at a time.
package runner

import (
	"errors"
	"math"

	"alcyxob/liftlog/internal/domain"
)

var (
	ErrFinished     = errors.New("workout is already finished")
	ErrInvalidValue = errors.New("reps and weight must be finite and not negative")
)

// Position points at one set. Exercise == len(exercises) is the terminal position.
type Position struct {
	Exercise int `json:"exerciseIndex"`
	Set      int `json:"setIndex"`
}

// SetEdit carries the fields to overwrite on the current set; nil leaves a field alone.
type SetEdit struct {
	Reps   *int     `json:"reps"`
	Weight *float64 `json:"weight"`
	Notes  *string  `json:"notes"`
}

// Machine holds a private copy of the workout and the runner position in it.
// It is not safe for concurrent use; Session serializes access.
type Machine struct {
	workout *domain.Workout
	pos     Position
}

// New positions a machine on the first set of w. The workout is copied and
// its exercises and sets sorted into performance order.
func New(w *domain.Workout) *Machine {
	cp := *w
	cp.Exercises = make([]domain.WorkoutExercise, len(w.Exercises))
	for i, ex := range w.Exercises {
		ex.Sets = append([]domain.WorkoutSet(nil), ex.Sets...)
		cp.Exercises[i] = ex
	}
	domain.SortExercises(cp.Exercises)
	for i := range cp.Exercises {
		domain.SortSets(cp.Exercises[i].Sets)
	}

	m := &Machine{workout: &cp}
	m.pos = Position{Exercise: m.nextWithSets(0)}
	return m
}

// Position returns the current position.
func (m *Machine) Position() Position {
	return m.pos
}

// Done reports whether the machine reached the terminal position.
func (m *Machine) Done() bool {
	return m.pos.Exercise >= len(m.workout.Exercises)
}

// Workout returns the working copy, including every edit made so far.
func (m *Machine) Workout() *domain.Workout {
	return m.workout
}

// Current returns the exercise and set at the current position.
func (m *Machine) Current() (*domain.WorkoutExercise, *domain.WorkoutSet, bool) {
	if m.Done() {
		return nil, nil, false
	}
	ex := &m.workout.Exercises[m.pos.Exercise]
	return ex, &ex.Sets[m.pos.Set], true
}

// Advance moves to the next set, then to the first set of the next exercise.
// Past the last set it moves to the terminal position and reports true.
func (m *Machine) Advance() bool {
	if m.Done() {
		return true
	}
	if m.pos.Set+1 < len(m.workout.Exercises[m.pos.Exercise].Sets) {
		m.pos.Set++
		return false
	}
	m.pos = Position{Exercise: m.nextWithSets(m.pos.Exercise + 1)}
	return m.Done()
}

// Back moves to the previous set, or to the last set of the previous
// exercise. It does nothing on the first set.
func (m *Machine) Back() {
	if !m.Done() && m.pos.Set > 0 {
		m.pos.Set--
		return
	}
	prev := m.prevWithSets(m.pos.Exercise - 1)
	if prev < 0 {
		return
	}
	m.pos = Position{Exercise: prev, Set: len(m.workout.Exercises[prev].Sets) - 1}
}

// Edit overwrites fields of the current set.
func (m *Machine) Edit(e SetEdit) error {
	_, set, ok := m.Current()
	if !ok {
		return ErrFinished
	}
	if e.Reps != nil && *e.Reps < 0 {
		return ErrInvalidValue
	}
	if e.Weight != nil && (*e.Weight < 0 || math.IsNaN(*e.Weight) || math.IsInf(*e.Weight, 0)) {
		return ErrInvalidValue
	}

	if e.Reps != nil {
		set.Reps = *e.Reps
	}
	if e.Weight != nil {
		set.Weight = *e.Weight
	}
	if e.Notes != nil {
		set.Notes = *e.Notes
	}
	return nil
}

// Sets returns every set of the working copy in performance order.
func (m *Machine) Sets() []domain.WorkoutSet {
	return m.workout.AllSets()
}

func (m *Machine) nextWithSets(from int) int {
	for i := from; i < len(m.workout.Exercises); i++ {
		if len(m.workout.Exercises[i].Sets) > 0 {
			return i
		}
	}
	return len(m.workout.Exercises)
}

func (m *Machine) prevWithSets(from int) int {
	if from >= len(m.workout.Exercises) {
		from = len(m.workout.Exercises) - 1
	}
	for i := from; i >= 0; i-- {
		if len(m.workout.Exercises[i].Sets) > 0 {
			return i
		}
	}
	return -1
}
