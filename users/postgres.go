package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"focus-hub/pkg/resources"
)

type Repository interface {
	// Register stores user unless the email is taken, in which case it
	// returns false.
	Register(ctx context.Context, user *User) (*User, bool, error)
	List(ctx context.Context) ([]User, error)
}

type repository struct {
	tracer  trace.Tracer
	metrics *resources.DBMetrics
	pool    resources.DBInstance
}

func NewRepository(pool resources.DBInstance) Repository {
	return &repository{
		tracer:  otel.GetTracerProvider().Tracer("focus-hub/users"),
		metrics: resources.NewDBMetrics("focus-hub/db", "users"),
		pool:    pool,
	}
}

func (r *repository) Register(ctx context.Context, user *User) (*User, bool, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "register", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.Register")
	defer span.End()

	var saved User

	err = r.pool.QueryRow(ctx,
		"INSERT INTO users (email, name, photo_url) VALUES ($1, $2, $3) "+
			"ON CONFLICT (email) DO NOTHING "+
			"RETURNING email, name, photo_url, created_at",
		user.Email, user.Name, user.PhotoURL).
		Scan(&saved.Email, &saved.Name, &saved.PhotoURL, &saved.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to register user: %w", err)
	}

	return &saved, true, nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "list", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.List")
	defer span.End()

	rows, err := r.pool.Query(ctx, "SELECT email, name, photo_url, created_at FROM users ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (User, error) {
		var u User
		scanErr := row.Scan(&u.Email, &u.Name, &u.PhotoURL, &u.CreatedAt)

		return u, scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}

	return users, nil
}
