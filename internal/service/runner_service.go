package service

import (
	"context"
	"errors"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/metrics"
	"alcyxob/liftlog/internal/repository"
	"alcyxob/liftlog/internal/runner"

	log "github.com/sirupsen/logrus"
)

var (
	ErrNoRunnerSession = errors.New("no runner session for this workout")
	ErrNothingToRun    = errors.New("workout has no sets to run")
)

// RunnerState is what the runner screen renders.
type RunnerState struct {
	WorkoutID string                  `json:"workoutId"`
	Position  runner.Position         `json:"position"`
	Finished  bool                    `json:"finished"`
	Resumed   bool                    `json:"resumed,omitempty"`
	Exercise  *domain.WorkoutExercise `json:"exercise,omitempty"`
	Set       *domain.WorkoutSet      `json:"set,omitempty"`
	SetIndex  int                     `json:"setNumber"` // 1-based position among all sets
	SetTotal  int                     `json:"setTotal"`
	Redirect  string                  `json:"redirect,omitempty"` // set once the run is saved
}

type RunnerService interface {
	// Start opens a run of the workout, or resumes the one in progress.
	Start(ctx context.Context, userID, workoutID string) (*RunnerState, error)
	State(ctx context.Context, userID, workoutID string) (*RunnerState, error)
	// Advance steps forward; stepping past the last set saves the run.
	Advance(ctx context.Context, userID, workoutID string) (*RunnerState, error)
	Back(ctx context.Context, userID, workoutID string) (*RunnerState, error)
	Edit(ctx context.Context, userID, workoutID string, edit runner.SetEdit) (*RunnerState, error)
	// Finish saves every set and marks the workout completed.
	Finish(ctx context.Context, userID, workoutID string) (*RunnerState, error)
	Abandon(ctx context.Context, userID, workoutID string) error
}

type runnerService struct {
	workoutRepo repository.WorkoutRepository
	registry    *runner.Registry
	metrics     *metrics.Manager
}

func NewRunnerService(workoutRepo repository.WorkoutRepository, registry *runner.Registry, metricsManager *metrics.Manager) RunnerService {
	return &runnerService{
		workoutRepo: workoutRepo,
		registry:    registry,
		metrics:     metricsManager,
	}
}

func (s *runnerService) Start(ctx context.Context, userID, workoutID string) (*RunnerState, error) {
	if sess, ok := s.registry.Get(userID, workoutID); ok {
		state, err := s.snapshot(sess)
		if err == nil {
			state.Resumed = true
		}
		return state, err
	}

	w, err := s.workoutRepo.GetByID(ctx, userID, workoutID)
	if err != nil {
		return nil, mapRepoErr(err, ErrWorkoutNotFound)
	}
	if len(w.AllSets()) == 0 {
		return nil, ErrNothingToRun
	}

	sess, resumed := s.registry.Start(userID, w)
	s.updateGauge()
	state, err := s.snapshot(sess)
	if err != nil {
		return nil, err
	}
	state.Resumed = resumed
	log.WithFields(log.Fields{"userID": userID, "workoutID": workoutID, "resumed": resumed}).Debug("runner started")
	return state, nil
}

func (s *runnerService) State(_ context.Context, userID, workoutID string) (*RunnerState, error) {
	sess, ok := s.registry.Get(userID, workoutID)
	if !ok {
		return nil, ErrNoRunnerSession
	}
	return s.snapshot(sess)
}

func (s *runnerService) Advance(ctx context.Context, userID, workoutID string) (*RunnerState, error) {
	sess, ok := s.registry.Get(userID, workoutID)
	if !ok {
		return nil, ErrNoRunnerSession
	}

	var finished bool
	var state *RunnerState
	err := sess.Do(func(m *runner.Machine) error {
		if !s.isOpen(sess, userID, workoutID) {
			return ErrNoRunnerSession
		}
		if !m.Advance() {
			state = stateOf(m)
			return nil
		}
		finished = true
		var err error
		state, err = s.finalize(ctx, userID, workoutID, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	if finished {
		s.completed(userID, workoutID)
	}
	return state, nil
}

func (s *runnerService) Back(_ context.Context, userID, workoutID string) (*RunnerState, error) {
	return s.step(userID, workoutID, func(m *runner.Machine) error {
		m.Back()
		return nil
	})
}

func (s *runnerService) Edit(_ context.Context, userID, workoutID string, edit runner.SetEdit) (*RunnerState, error) {
	return s.step(userID, workoutID, func(m *runner.Machine) error {
		return m.Edit(edit)
	})
}

// Finish persists the run as one unit of work. On failure the session is
// kept so the user can retry.
func (s *runnerService) Finish(ctx context.Context, userID, workoutID string) (*RunnerState, error) {
	sess, ok := s.registry.Get(userID, workoutID)
	if !ok {
		return nil, ErrNoRunnerSession
	}

	var state *RunnerState
	err := sess.Do(func(m *runner.Machine) error {
		if !s.isOpen(sess, userID, workoutID) {
			return ErrNoRunnerSession
		}
		var err error
		state, err = s.finalize(ctx, userID, workoutID, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.completed(userID, workoutID)
	return state, nil
}

// finalize saves the sets, marks the workout completed and closes the
// session. The caller holds the session lock.
func (s *runnerService) finalize(ctx context.Context, userID, workoutID string, m *runner.Machine) (*RunnerState, error) {
	completed := domain.StatusCompleted
	err := s.workoutRepo.SaveSets(ctx, userID, workoutID, repository.SetsUpdate{
		Status: &completed,
		Sets:   m.Sets(),
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"userID": userID, "workoutID": workoutID}).Error("saving workout run failed")
		return nil, mapRepoErr(err, ErrWorkoutNotFound)
	}
	s.registry.Remove(userID, workoutID)

	state := stateOf(m)
	state.Finished = true
	state.Redirect = workoutRedirect(workoutID)
	return state, nil
}

func (s *runnerService) completed(userID, workoutID string) {
	s.updateGauge()
	if s.metrics != nil {
		s.metrics.CounterWorkoutsFinished.Inc()
	}
	log.WithFields(log.Fields{"userID": userID, "workoutID": workoutID}).Info("workout completed")
}

func (s *runnerService) Abandon(_ context.Context, userID, workoutID string) error {
	if _, ok := s.registry.Get(userID, workoutID); !ok {
		return ErrNoRunnerSession
	}
	s.registry.Remove(userID, workoutID)
	s.updateGauge()
	return nil
}

func (s *runnerService) step(userID, workoutID string, fn func(m *runner.Machine) error) (*RunnerState, error) {
	sess, ok := s.registry.Get(userID, workoutID)
	if !ok {
		return nil, ErrNoRunnerSession
	}
	var state *RunnerState
	err := sess.Do(func(m *runner.Machine) error {
		if !s.isOpen(sess, userID, workoutID) {
			return ErrNoRunnerSession
		}
		if err := fn(m); err != nil {
			return err
		}
		state = stateOf(m)
		return nil
	})
	return state, err
}

// isOpen reports whether sess is still the registered run of the workout.
// A request that waited on the lock of a finished or abandoned run sees false.
func (s *runnerService) isOpen(sess *runner.Session, userID, workoutID string) bool {
	cur, ok := s.registry.Get(userID, workoutID)
	return ok && cur == sess
}

func (s *runnerService) snapshot(sess *runner.Session) (*RunnerState, error) {
	var state *RunnerState
	err := sess.Do(func(m *runner.Machine) error {
		state = stateOf(m)
		return nil
	})
	return state, err
}

func (s *runnerService) updateGauge() {
	if s.metrics != nil {
		s.metrics.GaugeRunnerSessions.Set(float64(s.registry.Len()))
	}
}

// stateOf copies the machine's current view so it can leave the session lock.
func stateOf(m *runner.Machine) *RunnerState {
	w := m.Workout()
	state := &RunnerState{
		WorkoutID: w.ID,
		Position:  m.Position(),
		Finished:  m.Done(),
		SetTotal:  len(w.AllSets()),
	}

	pos := m.Position()
	for i := 0; i < pos.Exercise && i < len(w.Exercises); i++ {
		state.SetIndex += len(w.Exercises[i].Sets)
	}

	if ex, set, ok := m.Current(); ok {
		exCopy := *ex
		exCopy.Sets = append([]domain.WorkoutSet(nil), ex.Sets...)
		setCopy := *set
		state.Exercise = &exCopy
		state.Set = &setCopy
		state.SetIndex += pos.Set + 1
	}
	return state
}
