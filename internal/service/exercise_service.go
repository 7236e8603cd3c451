package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrValidationFailed = errors.New("exercise name is required")
	ErrExerciseExists   = errors.New("an exercise with this name already exists")
)

type ExerciseService interface {
	// List returns the visible catalog by name; query filters name or target
	// muscle, case-insensitively.
	List(ctx context.Context, userID, query string) ([]domain.Exercise, error)
	// Get returns one exercise; another user's custom exercise is not found.
	Get(ctx context.Context, userID, id string) (*domain.Exercise, error)
	CreateCustom(ctx context.Context, userID, name, targetMuscle string) (*domain.Exercise, error)
	// Resolve maps exercise ids to catalog refs, keeping the given order.
	Resolve(ctx context.Context, userID string, ids []string) ([]domain.ExerciseRef, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

func (s *exerciseService) List(ctx context.Context, userID, query string) ([]domain.Exercise, error) {
	all, err := s.exerciseRepo.ListVisible(ctx, userID)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}

	out := make([]domain.Exercise, 0, len(all))
	for _, e := range all {
		if strings.Contains(strings.ToLower(e.Name), query) || strings.Contains(strings.ToLower(e.TargetMuscle), query) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *exerciseService) Get(ctx context.Context, userID, id string) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, ErrExerciseNotFound)
	}
	if !exercise.VisibleTo(userID) {
		return nil, ErrExerciseNotFound
	}
	return exercise, nil
}

// CreateCustom adds an exercise owned by userID. Names already visible to the
// user are rejected.
func (s *exerciseService) CreateCustom(ctx context.Context, userID, name, targetMuscle string) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidationFailed
	}
	visible, err := s.exerciseRepo.ListVisible(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, e := range visible {
		if strings.EqualFold(e.Name, name) {
			return nil, ErrExerciseExists
		}
	}

	owner := userID
	exercise := &domain.Exercise{
		Name:         name,
		TargetMuscle: strings.TrimSpace(targetMuscle),
		IsCustom:     true,
		UserID:       &owner,
	}
	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrExerciseExists
		}
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) Resolve(ctx context.Context, userID string, ids []string) ([]domain.ExerciseRef, error) {
	visible, err := s.exerciseRepo.ListVisible(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.ExerciseRef, len(visible))
	for i := range visible {
		byID[visible[i].ID] = visible[i].Ref()
	}

	refs := make([]domain.ExerciseRef, 0, len(ids))
	for _, id := range ids {
		ref, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrExerciseNotFound, id)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
