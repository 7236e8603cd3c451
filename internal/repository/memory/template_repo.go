package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/google/uuid"
)

type templateRepo struct {
	db *db
}

func (r *templateRepo) Create(_ context.Context, template *domain.Template) (string, error) {
	if template.UserID == "" || strings.TrimSpace(template.Name) == "" {
		return "", errors.New("template requires a user and a name")
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id := uuid.NewString()
	rows := append([]domain.TemplateExercise(nil), template.Exercises...)
	if err := repository.PrepareTemplateRows(id, rows); err != nil {
		return "", err
	}
	if err := r.checkCatalog(template.UserID, rows); err != nil {
		return "", err
	}

	template.ID = id
	template.CreatedAt = time.Now().UTC()
	template.Exercises = rows
	r.insertRows(rows)

	stored := *template
	stored.Exercises = nil
	r.db.templates[id] = stored
	return id, nil
}

func (r *templateRepo) GetByID(_ context.Context, userID, id string) (*domain.Template, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, ok := r.db.templates[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	t = r.db.loadTemplate(t)
	return &t, nil
}

func (r *templateRepo) List(_ context.Context, userID string) ([]domain.Template, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]domain.Template, 0)
	for _, t := range r.db.templates {
		if t.UserID == userID {
			out = append(out, r.db.loadTemplate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *templateRepo) ReplaceExercises(_ context.Context, userID, id string, exercises []domain.TemplateExercise) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.templates[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	rows := append([]domain.TemplateExercise(nil), exercises...)
	if err := repository.PrepareTemplateRows(id, rows); err != nil {
		return err
	}
	if err := r.checkCatalog(userID, rows); err != nil {
		return err
	}

	r.db.deleteTemplateRows(id)
	r.insertRows(rows)
	return nil
}

func (r *templateRepo) Rename(_ context.Context, userID, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: template name is required", repository.ErrInvalid)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.templates[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	t.Name = name
	r.db.templates[id] = t
	return nil
}

func (r *templateRepo) Delete(_ context.Context, userID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.templates[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	r.db.deleteTemplateRows(id)
	delete(r.db.templates, id)
	for wid, w := range r.db.workouts {
		if w.TemplateID != nil && *w.TemplateID == id {
			w.TemplateID = nil
			r.db.workouts[wid] = w
		}
	}
	return nil
}

func (r *templateRepo) checkCatalog(userID string, rows []domain.TemplateExercise) error {
	for _, te := range rows {
		e, ok := r.db.exercises[te.ExerciseID]
		if !ok || !e.VisibleTo(userID) {
			return fmt.Errorf("%w: unknown exercise %s", repository.ErrInvalid, te.ExerciseID)
		}
	}
	return nil
}

func (r *templateRepo) insertRows(rows []domain.TemplateExercise) {
	for _, te := range rows {
		te = te.Clone()
		te.Exercise = nil
		r.db.templateExercises[te.ID] = te
	}
}
