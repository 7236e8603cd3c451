// Package postgres implements the repository interfaces on PostgreSQL.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(dsn string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// NewStore builds every repository on top of pool.
func NewStore(pool *pgxpool.Pool) *repository.Store {
	return &repository.Store{
		Users:     &userRepo{db: pool},
		Exercises: &exerciseRepo{db: pool},
		Workouts:  &workoutRepo{db: pool},
		Templates: &templateRepo{db: pool},
	}
}

// mapError turns constraint violations into repository errors.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
	case "23503", "23514":
		return fmt.Errorf("%w: %s", repository.ErrInvalid, pgErr.ConstraintName)
	}
	return err
}

func dateArg(d domain.Date) (any, error) {
	t, err := d.Time()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrInvalid, err)
	}
	return t, nil
}

// checkCatalog fails with ErrInvalid unless every id names an exercise visible to the user.
func checkCatalog(ctx context.Context, q querier, userID string, ids []string) error {
	unique := make(map[string]struct{}, len(ids))
	list := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := unique[id]; !ok {
			unique[id] = struct{}{}
			list = append(list, id)
		}
	}
	if len(list) == 0 {
		return nil
	}

	var n int
	err := q.QueryRow(ctx,
		`SELECT count(*) FROM exercises WHERE id = ANY($1) AND (user_id IS NULL OR user_id = $2)`,
		list, userID,
	).Scan(&n)
	if err != nil {
		return err
	}
	if n != len(list) {
		return fmt.Errorf("%w: unknown exercise in list", repository.ErrInvalid)
	}
	return nil
}
