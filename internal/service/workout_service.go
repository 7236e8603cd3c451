package service

import (
	"context"
	"errors"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrInvalidStatus   = errors.New("status must be scheduled or completed")
)

// Dashboard is the landing view: what is coming up and what was done lately.
type Dashboard struct {
	Next      *domain.Workout  `json:"next"`
	Scheduled []domain.Workout `json:"scheduled"`
	Completed []domain.Workout `json:"completed"`
}

// ListOptions narrows a workout listing.
type ListOptions struct {
	Status domain.WorkoutStatus
	Order  repository.SortOrder
	Limit  int
}

// SetsInput is a bulk edit of logged values from the detail editor.
type SetsInput struct {
	Date   *string             `json:"date"`
	Status *string             `json:"status"`
	Sets   []domain.WorkoutSet `json:"sets"`
}

type WorkoutService interface {
	Dashboard(ctx context.Context, userID string) (*Dashboard, error)
	List(ctx context.Context, userID string, opts ListOptions) ([]domain.Workout, error)
	Get(ctx context.Context, userID, workoutID string) (*domain.Workout, error)
	UpdateStatus(ctx context.Context, userID, workoutID string, status domain.WorkoutStatus) error
	SaveSets(ctx context.Context, userID, workoutID string, in SetsInput) (*domain.Workout, error)
	Delete(ctx context.Context, userID, workoutID string) error
}

type workoutService struct {
	workoutRepo repository.WorkoutRepository
	today       Clock
	recentLimit int
}

func NewWorkoutService(workoutRepo repository.WorkoutRepository, today Clock, recentLimit int) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		today:       today,
		recentLimit: recentLimit,
	}
}

// Dashboard loads the scheduled and the recent completed workouts concurrently.
func (s *workoutService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Scheduled, err = s.List(gctx, userID, ListOptions{Status: domain.StatusScheduled, Order: repository.Ascending})
		return err
	})
	g.Go(func() error {
		var err error
		d.Completed, err = s.List(gctx, userID, ListOptions{
			Status: domain.StatusCompleted,
			Order:  repository.Descending,
			Limit:  s.recentLimit,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).WithField("userID", userID).Error("loading dashboard failed")
		return nil, err
	}
	if len(d.Scheduled) > 0 {
		next := d.Scheduled[0]
		d.Next = &next
	}
	return &d, nil
}

func (s *workoutService) List(ctx context.Context, userID string, opts ListOptions) ([]domain.Workout, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	today := s.today()
	workouts, err := s.workoutRepo.List(ctx, userID, repository.WorkoutFilter{
		Status: opts.Status,
		Today:  today,
		Order:  opts.Order,
		Limit:  opts.Limit,
	})
	if err != nil {
		return nil, err
	}
	for i := range workouts {
		workouts[i].ApplyDefaults(today)
	}
	return workouts, nil
}

func (s *workoutService) Get(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	w, err := s.workoutRepo.GetByID(ctx, userID, workoutID)
	if err != nil {
		return nil, mapRepoErr(err, ErrWorkoutNotFound)
	}
	w.ApplyDefaults(s.today())
	return w, nil
}

func (s *workoutService) UpdateStatus(ctx context.Context, userID, workoutID string, status domain.WorkoutStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return mapRepoErr(s.workoutRepo.UpdateStatus(ctx, userID, workoutID, status), ErrWorkoutNotFound)
}

// SaveSets writes every edited set, plus the optional date and status, as one unit.
func (s *workoutService) SaveSets(ctx context.Context, userID, workoutID string, in SetsInput) (*domain.Workout, error) {
	var update repository.SetsUpdate
	if in.Date != nil {
		d, err := domain.ParseDate(*in.Date)
		if err != nil {
			return nil, errors.Join(ErrInvalidInput, err)
		}
		update.Date = &d
	}
	if in.Status != nil {
		st := domain.WorkoutStatus(*in.Status)
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		update.Status = &st
	}
	update.Sets = in.Sets

	if err := s.workoutRepo.SaveSets(ctx, userID, workoutID, update); err != nil {
		return nil, mapRepoErr(err, ErrWorkoutNotFound)
	}
	return s.Get(ctx, userID, workoutID)
}

func (s *workoutService) Delete(ctx context.Context, userID, workoutID string) error {
	if err := s.workoutRepo.Delete(ctx, userID, workoutID); err != nil {
		return mapRepoErr(err, ErrWorkoutNotFound)
	}
	log.WithFields(log.Fields{"userID": userID, "workoutID": workoutID}).Info("workout deleted")
	return nil
}
