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
	"github.com/jackc/pgx/v5/pgxpool"
)

type workoutRepo struct {
	db *pgxpool.Pool
}

const workoutColumns = `w.id, w.user_id, to_char(w.date, 'YYYY-MM-DD'), w.status, w.template_id, w.created_at, w.updated_at`

func (r *workoutRepo) Create(ctx context.Context, workout *domain.Workout) (string, error) {
	if workout.UserID == "" || workout.Date.IsZero() {
		return "", errors.New("workout requires a user and a date")
	}
	date, err := dateArg(workout.Date)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	exercises := cloneExercises(workout.Exercises)
	if err := repository.PrepareWorkoutRows(id, exercises); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := checkCatalog(ctx, tx, workout.UserID, workoutExerciseIDs(exercises)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO workouts (id, user_id, date, status, template_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
			id, workout.UserID, date, statusArg(workout.Status), workout.TemplateID, now,
		)
		if err != nil {
			return mapError(err)
		}
		return insertWorkoutRows(ctx, tx, exercises)
	})
	if err != nil {
		return "", err
	}

	workout.ID = id
	workout.CreatedAt = now
	workout.UpdatedAt = now
	workout.Exercises = exercises
	return id, nil
}

func (r *workoutRepo) GetByID(ctx context.Context, userID, id string) (*domain.Workout, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+workoutColumns+` FROM workouts w WHERE w.id = $1 AND w.user_id = $2`,
		id, userID,
	)
	if err != nil {
		return nil, err
	}
	workouts, err := scanWorkouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, repository.ErrNotFound
	}
	if err := attachExercises(ctx, r.db, workouts); err != nil {
		return nil, err
	}
	return &workouts[0], nil
}

func (r *workoutRepo) List(ctx context.Context, userID string, filter repository.WorkoutFilter) ([]domain.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts w WHERE w.user_id = $1`
	args := []any{userID}

	switch filter.Status {
	case domain.StatusScheduled, domain.StatusCompleted:
		today, err := dateArg(filter.Today)
		if err != nil {
			return nil, err
		}
		cmp := ">="
		if filter.Status == domain.StatusCompleted {
			cmp = "<"
		}
		query += fmt.Sprintf(` AND (w.status = $2 OR (w.status IS NULL AND w.date %s $3))`, cmp)
		args = append(args, string(filter.Status), today)
	}

	direction := "ASC"
	if filter.Order == repository.Descending {
		direction = "DESC"
	}
	query += ` ORDER BY w.date ` + direction + `, w.created_at ASC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	workouts, err := scanWorkouts(rows)
	if err != nil {
		return nil, err
	}
	if err := attachExercises(ctx, r.db, workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *workoutRepo) ReplaceExercises(ctx context.Context, userID, id string, date domain.Date, exercises []domain.WorkoutExercise) error {
	rows := cloneExercises(exercises)
	if err := repository.PrepareWorkoutRows(id, rows); err != nil {
		return err
	}
	var dateValue any
	if !date.IsZero() {
		var err error
		if dateValue, err = dateArg(date); err != nil {
			return err
		}
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE workouts SET date = COALESCE($3, date), updated_at = now() WHERE id = $1 AND user_id = $2`,
			id, userID, dateValue,
		)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		if err := checkCatalog(ctx, tx, userID, workoutExerciseIDs(rows)); err != nil {
			return err
		}
		// sets go with their exercises via ON DELETE CASCADE
		if _, err := tx.Exec(ctx, `DELETE FROM workout_exercises WHERE workout_id = $1`, id); err != nil {
			return err
		}
		return insertWorkoutRows(ctx, tx, rows)
	})
}

func (r *workoutRepo) UpdateStatus(ctx context.Context, userID, id string, status domain.WorkoutStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE workouts SET status = $3, updated_at = now() WHERE id = $1 AND user_id = $2`,
		id, userID, statusArg(status),
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *workoutRepo) SaveSets(ctx context.Context, userID, id string, update repository.SetsUpdate) error {
	var dateValue, statusValue any
	if update.Date != nil {
		var err error
		if dateValue, err = dateArg(*update.Date); err != nil {
			return err
		}
	}
	if update.Status != nil {
		statusValue = string(*update.Status)
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE workouts SET date = COALESCE($3, date), status = COALESCE($4, status), updated_at = now()
			 WHERE id = $1 AND user_id = $2`,
			id, userID, dateValue, statusValue,
		)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}

		exerciseIDs := make(map[string]bool)
		existing := make(map[string]string)
		rows, err := tx.Query(ctx,
			`SELECT we.id, s.id FROM workout_exercises we
			 LEFT JOIN workout_sets s ON s.workout_exercise_id = we.id
			 WHERE we.workout_id = $1`,
			id,
		)
		if err != nil {
			return err
		}
		for rows.Next() {
			var weID string
			var setID *string
			if err := rows.Scan(&weID, &setID); err != nil {
				rows.Close()
				return err
			}
			exerciseIDs[weID] = true
			if setID != nil {
				existing[*setID] = weID
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		sets, err := repository.PrepareSetUpserts(existing, exerciseIDs, update.Sets)
		if err != nil {
			return err
		}
		for _, s := range sets {
			// the WHERE keeps a set id of another workout from being taken over
			tag, err := tx.Exec(ctx,
				`INSERT INTO workout_sets (id, workout_exercise_id, set_number, reps, weight, intensity_type, notes)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (id) DO UPDATE SET
				   set_number = EXCLUDED.set_number, reps = EXCLUDED.reps, weight = EXCLUDED.weight,
				   intensity_type = EXCLUDED.intensity_type, notes = EXCLUDED.notes
				 WHERE workout_sets.workout_exercise_id = EXCLUDED.workout_exercise_id`,
				s.ID, s.WorkoutExerciseID, s.SetNumber, s.Reps, s.Weight, s.IntensityType, s.Notes,
			)
			if err != nil {
				return mapError(err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: set %s belongs to another workout", repository.ErrNotFound, s.ID)
			}
		}
		return nil
	})
}

func (r *workoutRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func insertWorkoutRows(ctx context.Context, tx pgx.Tx, exercises []domain.WorkoutExercise) error {
	batch := &pgx.Batch{}
	for _, we := range exercises {
		batch.Queue(
			`INSERT INTO workout_exercises (id, workout_id, exercise_id, "order", sets, reps, weight)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			we.ID, we.WorkoutID, we.ExerciseID, we.Order, we.SetsCount, we.Reps, we.Weight,
		)
		for _, s := range we.Sets {
			batch.Queue(
				`INSERT INTO workout_sets (id, workout_exercise_id, set_number, reps, weight, intensity_type, notes)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				s.ID, s.WorkoutExerciseID, s.SetNumber, s.Reps, s.Weight, s.IntensityType, s.Notes,
			)
		}
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err)
	}
	return nil
}

func scanWorkouts(rows pgx.Rows) ([]domain.Workout, error) {
	defer rows.Close()

	out := []domain.Workout{}
	for rows.Next() {
		var w domain.Workout
		var date string
		var status *string
		if err := rows.Scan(&w.ID, &w.UserID, &date, &status, &w.TemplateID, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		w.Date = domain.Date(date)
		if status != nil {
			w.Status = domain.WorkoutStatus(*status)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// attachExercises loads exercises (with their catalog entry) and sets of the workouts in place.
func attachExercises(ctx context.Context, q querier, workouts []domain.Workout) error {
	if len(workouts) == 0 {
		return nil
	}
	ids := make([]string, len(workouts))
	for i := range workouts {
		ids[i] = workouts[i].ID
	}

	rows, err := q.Query(ctx,
		`SELECT we.id, we.workout_id, we.exercise_id, we."order", we.sets, we.reps, we.weight,
		        e.id, e.name, e.target_muscle
		 FROM workout_exercises we
		 LEFT JOIN exercises e ON e.id = we.exercise_id
		 WHERE we.workout_id = ANY($1)
		 ORDER BY we."order", we.id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("querying workout exercises: %w", err)
	}
	var exercises []domain.WorkoutExercise
	for rows.Next() {
		var we domain.WorkoutExercise
		var refID, refName, refMuscle *string
		if err := rows.Scan(&we.ID, &we.WorkoutID, &we.ExerciseID, &we.Order, &we.SetsCount, &we.Reps, &we.Weight,
			&refID, &refName, &refMuscle); err != nil {
			rows.Close()
			return fmt.Errorf("scanning workout exercise: %w", err)
		}
		if refID != nil {
			we.Exercise = &domain.ExerciseRef{ID: *refID, Name: deref(refName), TargetMuscle: deref(refMuscle)}
		}
		exercises = append(exercises, we)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	setRows, err := q.Query(ctx,
		`SELECT s.id, s.workout_exercise_id, s.set_number, s.reps, s.weight, s.intensity_type, s.notes
		 FROM workout_sets s
		 JOIN workout_exercises we ON we.id = s.workout_exercise_id
		 WHERE we.workout_id = ANY($1)
		 ORDER BY s.set_number, s.id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("querying workout sets: %w", err)
	}
	defer setRows.Close()

	setsByExercise := make(map[string][]domain.WorkoutSet)
	for setRows.Next() {
		var s domain.WorkoutSet
		if err := setRows.Scan(&s.ID, &s.WorkoutExerciseID, &s.SetNumber, &s.Reps, &s.Weight, &s.IntensityType, &s.Notes); err != nil {
			return fmt.Errorf("scanning workout set: %w", err)
		}
		setsByExercise[s.WorkoutExerciseID] = append(setsByExercise[s.WorkoutExerciseID], s)
	}
	if err := setRows.Err(); err != nil {
		return err
	}

	byWorkout := make(map[string][]domain.WorkoutExercise)
	for _, we := range exercises {
		we.Sets = setsByExercise[we.ID]
		byWorkout[we.WorkoutID] = append(byWorkout[we.WorkoutID], we)
	}
	for i := range workouts {
		workouts[i].Exercises = byWorkout[workouts[i].ID]
	}
	return nil
}

func statusArg(s domain.WorkoutStatus) any {
	if s == "" {
		return nil
	}
	return string(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func workoutExerciseIDs(rows []domain.WorkoutExercise) []string {
	ids := make([]string, len(rows))
	for i, we := range rows {
		ids[i] = we.ExerciseID
	}
	return ids
}

func cloneExercises(in []domain.WorkoutExercise) []domain.WorkoutExercise {
	out := make([]domain.WorkoutExercise, len(in))
	for i, we := range in {
		we.Sets = append([]domain.WorkoutSet(nil), we.Sets...)
		out[i] = we
	}
	return out
}
