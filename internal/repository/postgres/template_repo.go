package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type templateRepo struct {
	db *pgxpool.Pool
}

func (r *templateRepo) Create(ctx context.Context, template *domain.Template) (string, error) {
	if template.UserID == "" || strings.TrimSpace(template.Name) == "" {
		return "", errors.New("template requires a user and a name")
	}

	id := uuid.NewString()
	rows := append([]domain.TemplateExercise(nil), template.Exercises...)
	if err := repository.PrepareTemplateRows(id, rows); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := checkCatalog(ctx, tx, template.UserID, templateExerciseIDs(rows)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO templates (id, user_id, name, source_workout_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
			id, template.UserID, template.Name, template.SourceWorkoutID, now,
		)
		if err != nil {
			return mapError(err)
		}
		return insertTemplateRows(ctx, tx, rows)
	})
	if err != nil {
		return "", err
	}

	template.ID = id
	template.CreatedAt = now
	template.Exercises = rows
	return id, nil
}

func (r *templateRepo) GetByID(ctx context.Context, userID, id string) (*domain.Template, error) {
	templates, err := r.query(ctx, `WHERE t.id = $1 AND t.user_id = $2`, id, userID)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, repository.ErrNotFound
	}
	return &templates[0], nil
}

func (r *templateRepo) List(ctx context.Context, userID string) ([]domain.Template, error) {
	return r.query(ctx, `WHERE t.user_id = $1 ORDER BY t.name, t.id`, userID)
}

func (r *templateRepo) ReplaceExercises(ctx context.Context, userID, id string, exercises []domain.TemplateExercise) error {
	rows := append([]domain.TemplateExercise(nil), exercises...)
	if err := repository.PrepareTemplateRows(id, rows); err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var owner string
		err := tx.QueryRow(ctx, `SELECT user_id FROM templates WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) || (err == nil && owner != userID) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := checkCatalog(ctx, tx, userID, templateExerciseIDs(rows)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM template_exercises WHERE template_id = $1`, id); err != nil {
			return err
		}
		return insertTemplateRows(ctx, tx, rows)
	})
}

func (r *templateRepo) Rename(ctx context.Context, userID, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: template name is required", repository.ErrInvalid)
	}
	tag, err := r.db.Exec(ctx, `UPDATE templates SET name = $3 WHERE id = $1 AND user_id = $2`, id, userID, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *templateRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *templateRepo) query(ctx context.Context, clause string, args ...any) ([]domain.Template, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.user_id, t.name, t.source_workout_id, t.created_at FROM templates t `+clause,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	templates := []domain.Template{}
	for rows.Next() {
		var t domain.Template
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.SourceWorkoutID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := attachTemplateExercises(ctx, r.db, templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func attachTemplateExercises(ctx context.Context, q querier, templates []domain.Template) error {
	if len(templates) == 0 {
		return nil
	}
	ids := make([]string, len(templates))
	for i := range templates {
		ids[i] = templates[i].ID
	}

	rows, err := q.Query(ctx,
		`SELECT te.id, te.template_id, te.exercise_id, te.sets, te.reps, te."order",
		        e.id, e.name, e.target_muscle
		 FROM template_exercises te
		 LEFT JOIN exercises e ON e.id = te.exercise_id
		 WHERE te.template_id = ANY($1)
		 ORDER BY te."order", te.id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("querying template exercises: %w", err)
	}
	defer rows.Close()

	byTemplate := make(map[string][]domain.TemplateExercise)
	for rows.Next() {
		var te domain.TemplateExercise
		var refID, refName, refMuscle *string
		if err := rows.Scan(&te.ID, &te.TemplateID, &te.ExerciseID, &te.Sets, &te.Reps, &te.Order,
			&refID, &refName, &refMuscle); err != nil {
			return fmt.Errorf("scanning template exercise: %w", err)
		}
		if refID != nil {
			te.Exercise = &domain.ExerciseRef{ID: *refID, Name: deref(refName), TargetMuscle: deref(refMuscle)}
		}
		byTemplate[te.TemplateID] = append(byTemplate[te.TemplateID], te)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range templates {
		templates[i].Exercises = byTemplate[templates[i].ID]
	}
	return nil
}

func insertTemplateRows(ctx context.Context, tx pgx.Tx, rows []domain.TemplateExercise) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, te := range rows {
		batch.Queue(
			`INSERT INTO template_exercises (id, template_id, exercise_id, sets, reps, "order")
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			te.ID, te.TemplateID, te.ExerciseID, te.Sets, te.Reps, te.Order,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err)
	}
	return nil
}

func templateExerciseIDs(rows []domain.TemplateExercise) []string {
	ids := make([]string, len(rows))
	for i, te := range rows {
		ids[i] = te.ExerciseID
	}
	return ids
}
