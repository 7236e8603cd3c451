package service

import (
	"context"
	"strings"

	"alcyxob/liftlog/internal/repository"
	"alcyxob/liftlog/internal/volume"
)

// VolumeReport feeds the analytics chart.
type VolumeReport struct {
	Muscle string         `json:"muscle"`
	Groups []string       `json:"groups"`
	Points []volume.Point `json:"points"`
}

type AnalyticsService interface {
	Volume(ctx context.Context, userID, muscle string) (*VolumeReport, error)
	WorkoutSummary(ctx context.Context, userID, workoutID string) (*volume.WorkoutSummary, error)
}

type analyticsService struct {
	workoutRepo repository.WorkoutRepository
}

func NewAnalyticsService(workoutRepo repository.WorkoutRepository) AnalyticsService {
	return &analyticsService{workoutRepo: workoutRepo}
}

// Volume charts every workout's volume by date, optionally for one muscle group.
func (s *analyticsService) Volume(ctx context.Context, userID, muscle string) (*VolumeReport, error) {
	workouts, err := s.workoutRepo.List(ctx, userID, repository.WorkoutFilter{Order: repository.Ascending})
	if err != nil {
		return nil, err
	}
	muscle = strings.TrimSpace(muscle)
	if muscle == "" {
		muscle = volume.AllMuscles
	}
	return &VolumeReport{
		Muscle: muscle,
		Groups: volume.MuscleGroups(workouts),
		Points: volume.ByDate(workouts, muscle),
	}, nil
}

func (s *analyticsService) WorkoutSummary(ctx context.Context, userID, workoutID string) (*volume.WorkoutSummary, error) {
	w, err := s.workoutRepo.GetByID(ctx, userID, workoutID)
	if err != nil {
		return nil, mapRepoErr(err, ErrWorkoutNotFound)
	}
	summary := volume.Summary(w)
	return &summary, nil
}
