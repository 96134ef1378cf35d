package notes

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

const noteColumns = "id, owner, title, subject, content, created_at, updated_at"

type Repository interface {
	// List returns the owner's notes, optionally restricted to one subject.
	List(ctx context.Context, owner string, subject string) ([]Note, error)
	Insert(ctx context.Context, note *Note) (*Note, error)
	FindById(ctx context.Context, owner string, id string) (*Note, error)
	Update(ctx context.Context, owner string, id string, patch NotePatch) (*Note, error)
	Delete(ctx context.Context, owner string, id string) (bool, error)
}

type repository struct {
	tracer  trace.Tracer
	metrics *resources.DBMetrics
	pool    resources.DBInstance
}

func NewRepository(pool resources.DBInstance) Repository {
	return &repository{
		tracer:  otel.GetTracerProvider().Tracer("focus-hub/notes"),
		metrics: resources.NewDBMetrics("focus-hub/db", "notes"),
		pool:    pool,
	}
}

func (r *repository) List(ctx context.Context, owner string, subject string) ([]Note, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "list", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.List")
	defer span.End()

	sql := "SELECT " + noteColumns + " FROM notes WHERE owner = $1"
	args := []any{owner}

	if subject != "" {
		sql += " AND subject = $2"
		args = append(args, subject)
	}

	rows, err := r.pool.Query(ctx, sql+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Note, error) {
		note, scanErr := scanNote(row)
		if scanErr != nil {
			return Note{}, scanErr
		}

		return *note, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan notes: %w", err)
	}

	return notes, nil
}

func (r *repository) Insert(ctx context.Context, note *Note) (*Note, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "insert", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.Insert")
	defer span.End()

	saved, err := scanNote(r.pool.QueryRow(ctx,
		"INSERT INTO notes (owner, title, subject, content) VALUES ($1, $2, $3, $4) RETURNING "+noteColumns,
		note.Owner, note.Title, note.Subject, note.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to insert note: %w", err)
	}

	return saved, nil
}

func (r *repository) FindById(ctx context.Context, owner string, id string) (*Note, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "find_by_id", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.FindById")
	defer span.End()

	note, err := scanNote(r.pool.QueryRow(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = $1 AND owner = $2", id, owner))
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get note by id: %w", err)
	}

	return note, nil
}

func (r *repository) Update(ctx context.Context, owner string, id string, patch NotePatch) (*Note, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "update", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.Update")
	defer span.End()

	note, err := scanNote(r.pool.QueryRow(ctx,
		"UPDATE notes SET title = COALESCE($3, title), subject = COALESCE($4, subject), "+
			"content = COALESCE($5, content), updated_at = now() "+
			"WHERE id = $1 AND owner = $2 RETURNING "+noteColumns,
		id, owner, patch.Title, patch.Subject, patch.Content))
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return note, nil
}

func (r *repository) Delete(ctx context.Context, owner string, id string) (bool, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "delete", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.Delete")
	defer span.End()

	tag, err := r.pool.Exec(ctx, "DELETE FROM notes WHERE id = $1 AND owner = $2", id, owner)
	if err != nil {
		return false, fmt.Errorf("failed to delete note: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func scanNote(row pgx.Row) (*Note, error) {
	var note Note

	err := row.Scan(&note.Id, &note.Owner, &note.Title, &note.Subject, &note.Content, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &note, nil
}
