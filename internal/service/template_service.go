package service

import (
	"context"
	"errors"
	"strings"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/planner"
	"alcyxob/liftlog/internal/repository"

	log "github.com/sirupsen/logrus"
)

var ErrTemplateNameRequired = errors.New("template name is required")

type TemplateService interface {
	List(ctx context.Context, userID string) ([]domain.Template, error)
	Get(ctx context.Context, userID, templateID string) (*domain.Template, error)
	// CreateFromDraft saves a builder draft as a named template.
	CreateFromDraft(ctx context.Context, userID, name string, draft planner.Draft) (*domain.Template, error)
	// CreateFromWorkout flattens a workout into a template that remembers its source.
	CreateFromWorkout(ctx context.Context, userID, workoutID, name string) (*domain.Template, error)
	Rename(ctx context.Context, userID, templateID, name string) error
	Delete(ctx context.Context, userID, templateID string) error
}

type templateService struct {
	templateRepo repository.TemplateRepository
	workoutRepo  repository.WorkoutRepository
}

func NewTemplateService(templateRepo repository.TemplateRepository, workoutRepo repository.WorkoutRepository) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		workoutRepo:  workoutRepo,
	}
}

func (s *templateService) List(ctx context.Context, userID string) ([]domain.Template, error) {
	return s.templateRepo.List(ctx, userID)
}

func (s *templateService) Get(ctx context.Context, userID, templateID string) (*domain.Template, error) {
	t, err := s.templateRepo.GetByID(ctx, userID, templateID)
	if err != nil {
		return nil, mapRepoErr(err, ErrTemplateNotFound)
	}
	return t, nil
}

func (s *templateService) CreateFromDraft(ctx context.Context, userID, name string, draft planner.Draft) (*domain.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTemplateNameRequired
	}
	if err := draft.Normalize(); err != nil {
		return nil, err
	}
	return s.create(ctx, &domain.Template{
		UserID:    userID,
		Name:      name,
		Exercises: draft.TemplateExercises(),
	})
}

func (s *templateService) CreateFromWorkout(ctx context.Context, userID, workoutID, name string) (*domain.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTemplateNameRequired
	}
	w, err := s.workoutRepo.GetByID(ctx, userID, workoutID)
	if err != nil {
		return nil, mapRepoErr(err, ErrWorkoutNotFound)
	}
	source := w.ID
	return s.create(ctx, &domain.Template{
		UserID:          userID,
		Name:            name,
		SourceWorkoutID: &source,
		Exercises:       domain.FlattenWorkout(w.Exercises),
	})
}

func (s *templateService) create(ctx context.Context, t *domain.Template) (*domain.Template, error) {
	if _, err := s.templateRepo.Create(ctx, t); err != nil {
		return nil, mapRepoErr(err, ErrTemplateNotFound)
	}
	log.WithFields(log.Fields{"userID": t.UserID, "templateID": t.ID}).Info("template created")
	return s.Get(ctx, t.UserID, t.ID)
}

func (s *templateService) Rename(ctx context.Context, userID, templateID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrTemplateNameRequired
	}
	return mapRepoErr(s.templateRepo.Rename(ctx, userID, templateID, name), ErrTemplateNotFound)
}

func (s *templateService) Delete(ctx context.Context, userID, templateID string) error {
	return mapRepoErr(s.templateRepo.Delete(ctx, userID, templateID), ErrTemplateNotFound)
}
