package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/google/uuid"
)

type exerciseRepo struct {
	db *db
}

func (r *exerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (string, error) {
	if exercise.Name == "" {
		return "", errors.New("exercise name is required")
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	exercise.ID = uuid.NewString()
	exercise.CreatedAt = time.Now().UTC()
	r.db.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *exerciseRepo) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	e, ok := r.db.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *exerciseRepo) ListVisible(_ context.Context, userID string) ([]domain.Exercise, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]domain.Exercise, 0, len(r.db.exercises))
	for _, e := range r.db.exercises {
		if e.VisibleTo(userID) {
			out = append(out, e)
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

func (r *exerciseRepo) Seed(_ context.Context, exercises []domain.Exercise) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	taken := make(map[string]bool)
	for _, e := range r.db.exercises {
		if e.UserID == nil {
			taken[strings.ToLower(e.Name)] = true
		}
	}

	added := 0
	now := time.Now().UTC()
	for _, e := range exercises {
		name := strings.ToLower(e.Name)
		if e.Name == "" || taken[name] {
			continue
		}
		taken[name] = true
		e.ID = uuid.NewString()
		e.UserID = nil
		e.IsCustom = false
		e.CreatedAt = now
		r.db.exercises[e.ID] = e
		added++
	}
	return added, nil
}
