package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type exerciseRepo struct {
	db querier
}

const exerciseColumns = `id, name, target_muscle, is_custom, user_id, created_at`

func (r *exerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (string, error) {
	if exercise.Name == "" {
		return "", errors.New("exercise name is required")
	}

	exercise.ID = uuid.NewString()
	exercise.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO exercises (`+exerciseColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		exercise.ID, exercise.Name, exercise.TargetMuscle, exercise.IsCustom, exercise.UserID, exercise.CreatedAt,
	)
	if err != nil {
		return "", mapError(err)
	}
	return exercise.ID, nil
}

func (r *exerciseRepo) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var e domain.Exercise
	err := r.db.QueryRow(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.TargetMuscle, &e.IsCustom, &e.UserID, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *exerciseRepo) ListVisible(ctx context.Context, userID string) ([]domain.Exercise, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises
		 WHERE user_id IS NULL OR user_id = $1
		 ORDER BY name, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	out := []domain.Exercise{}
	for rows.Next() {
		var e domain.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.TargetMuscle, &e.IsCustom, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *exerciseRepo) Seed(ctx context.Context, exercises []domain.Exercise) (int, error) {
	added := 0
	now := time.Now().UTC()
	for _, e := range exercises {
		if e.Name == "" {
			continue
		}
		tag, err := r.db.Exec(ctx,
			`INSERT INTO exercises (id, name, target_muscle, is_custom, created_at)
			 VALUES ($1, $2, $3, false, $4)
			 ON CONFLICT (lower(name)) WHERE user_id IS NULL DO NOTHING`,
			uuid.NewString(), e.Name, e.TargetMuscle, now,
		)
		if err != nil {
			return added, fmt.Errorf("seeding %q: %w", e.Name, err)
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}
