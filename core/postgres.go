package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"focus-hub/pkg/resources"
	"focus-hub/pkg/rest"
)

const itemColumns = "id, owner, subject, start_time, end_time, details::text, created_at, updated_at"

// invalidParameterValue is the SQLSTATE Postgres raises for a time zone
// name its own zone database does not know.
const invalidParameterValue = "22023"

// Query selects the owner's items inside a window, one page at a time.
type Query struct {
	Owner    string
	Window   Window
	View     View
	Location *time.Location
	Offset   int
	Limit    int
}

type Repository interface {
	Insert(ctx context.Context, item *ScheduledItem) (*ScheduledItem, error)
	// Overlaps reports whether the owner already has an item intersecting
	// interval, ignoring excludeId when it is not empty.
	Overlaps(ctx context.Context, owner string, interval Interval, excludeId string) (bool, error)
	Count(ctx context.Context, query Query) (int64, error)
	FindPage(ctx context.Context, query Query) ([]ScheduledItem, error)
	FindById(ctx context.Context, owner string, id string) (*ScheduledItem, error)
	Update(ctx context.Context, item *ScheduledItem) (*ScheduledItem, error)
	// Delete removes the item; an empty owner matches any owner.
	Delete(ctx context.Context, owner string, id string) (bool, error)
}

type repository struct {
	kind    Kind
	table   string
	tracer  trace.Tracer
	metrics *resources.DBMetrics
	pool    resources.DBInstance
}

func NewRepository(pool resources.DBInstance, kind Kind) Repository {
	return &repository{
		kind:    kind,
		table:   kind.table(),
		tracer:  otel.GetTracerProvider().Tracer("focus-hub/core"),
		metrics: resources.NewDBMetrics("focus-hub/db", kind.table()),
		pool:    pool,
	}
}

func (r *repository) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "repository."+op, trace.WithAttributes(attribute.String("db.collection.name", r.table)))
}

func (r *repository) Insert(ctx context.Context, item *ScheduledItem) (*ScheduledItem, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "insert", start, err) }()

	ctx, span := r.start(ctx, "Insert")
	defer span.End()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	saved, err := scanItem(tx.QueryRow(ctx,
		"INSERT INTO "+r.table+" (owner, subject, start_time, end_time, details) "+
			"VALUES ($1, $2, $3, $4, $5::jsonb) "+
			"RETURNING "+itemColumns,
		item.Owner, item.Subject, item.StartTime, item.EndTime, detailsText(item)))
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to insert %s: %w", r.kind, err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return saved, nil
}

func (r *repository) Overlaps(ctx context.Context, owner string, interval Interval, excludeId string) (bool, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "overlaps", start, err) }()

	ctx, span := r.start(ctx, "Overlaps")
	defer span.End()

	sql := "SELECT EXISTS (SELECT 1 FROM " + r.table + " WHERE owner = $1 AND start_time < $3 AND end_time > $2"
	args := []any{owner, interval.Start, interval.End}

	if excludeId != "" {
		sql += " AND id <> $4"
		args = append(args, excludeId)
	}

	var exists bool

	err = r.pool.QueryRow(ctx, sql+")", args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s overlap: %w", r.kind, err)
	}

	return exists, nil
}

func (r *repository) Count(ctx context.Context, query Query) (int64, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "count", start, err) }()

	ctx, span := r.start(ctx, "Count")
	defer span.End()

	var (
		sql  string
		args []any
	)

	switch query.View {
	case ViewGroup:
		sql = "SELECT count(DISTINCT to_char(start_time AT TIME ZONE $3::text, 'YYYY-MM-DD')) FROM " + r.table +
			" WHERE owner = $1 AND end_time " + query.Window.operator() + " $2"
		args = []any{query.Owner, query.Window.Now, query.Location.String()}
	default:
		sql = "SELECT count(*) FROM " + r.table + " WHERE owner = $1 AND end_time " + query.Window.operator() + " $2"
		args = []any{query.Owner, query.Window.Now}
	}

	var total int64

	err = r.pool.QueryRow(ctx, sql, args...).Scan(&total)
	if err != nil {
		return 0, zoneError(fmt.Errorf("failed to count %s items: %w", r.kind, err), query)
	}

	return total, nil
}

func (r *repository) FindPage(ctx context.Context, query Query) ([]ScheduledItem, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "find_page", start, err) }()

	ctx, span := r.start(ctx, "FindPage")
	defer span.End()

	direction := "DESC"
	if query.Window.Mode.ascending() {
		direction = "ASC"
	}

	match := "owner = $1 AND end_time " + query.Window.operator() + " $2"

	var (
		sql  string
		args []any
	)

	switch query.View {
	case ViewGroup:
		day := "to_char(start_time AT TIME ZONE $3::text, 'YYYY-MM-DD')"
		sql = "WITH days AS (SELECT DISTINCT " + day + " AS day FROM " + r.table + " WHERE " + match +
			" ORDER BY day " + direction + " OFFSET $4 LIMIT $5) " +
			"SELECT " + itemColumns + " FROM " + r.table + " WHERE " + match + " AND " + day + " IN (SELECT day FROM days) " +
			"ORDER BY start_time " + direction + ", created_at ASC"
		args = []any{query.Owner, query.Window.Now, query.Location.String(), query.Offset, query.Limit}
	default:
		sql = "SELECT " + itemColumns + " FROM " + r.table + " WHERE " + match +
			" ORDER BY start_time " + direction + ", created_at ASC OFFSET $3 LIMIT $4"
		args = []any{query.Owner, query.Window.Now, query.Offset, query.Limit}
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, zoneError(fmt.Errorf("failed to query %s items: %w", r.kind, err), query)
	}
	defer rows.Close()

	items := []ScheduledItem{}

	for rows.Next() {
		var item *ScheduledItem

		item, err = scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s item: %w", r.kind, err)
		}

		items = append(items, *item)
	}

	err = rows.Err()
	if err != nil {
		return nil, zoneError(fmt.Errorf("failed to iterate %s items: %w", r.kind, err), query)
	}

	return items, nil
}

func (r *repository) FindById(ctx context.Context, owner string, id string) (*ScheduledItem, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "find_by_id", start, err) }()

	ctx, span := r.start(ctx, "FindById")
	defer span.End()

	item, err := scanItem(r.pool.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM "+r.table+" WHERE id = $1 AND owner = $2", id, owner))
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get %s by id: %w", r.kind, err)
	}

	return item, nil
}

func (r *repository) Update(ctx context.Context, item *ScheduledItem) (*ScheduledItem, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "update", start, err) }()

	ctx, span := r.start(ctx, "Update")
	defer span.End()

	updated, err := scanItem(r.pool.QueryRow(ctx,
		"UPDATE "+r.table+" SET subject = $3, start_time = $4, end_time = $5, details = $6::jsonb, updated_at = now() "+
			"WHERE id = $1 AND owner = $2 "+
			"RETURNING "+itemColumns,
		item.Id, item.Owner, item.Subject, item.StartTime, item.EndTime, detailsText(item)))
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", r.kind, err)
	}

	return updated, nil
}

func (r *repository) Delete(ctx context.Context, owner string, id string) (bool, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "delete", start, err) }()

	ctx, span := r.start(ctx, "Delete")
	defer span.End()

	sql := "DELETE FROM " + r.table + " WHERE id = $1"
	args := []any{id}

	if owner != "" {
		sql += " AND owner = $2"
		args = append(args, owner)
	}

	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", r.kind, err)
	}

	return tag.RowsAffected() > 0, nil
}

// zoneError turns the store rejecting the zone of a group listing into a
// validation error; any other error is returned as is.
func zoneError(err error, query Query) error {
	if query.View != ViewGroup || query.Location == nil {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidParameterValue {
		return rest.Validation("invalid timezone %q: %s", query.Location.String(), pgErr.Message)
	}

	return err
}

func scanItem(row pgx.Row) (*ScheduledItem, error) {
	var (
		item    ScheduledItem
		details string
	)

	err := row.Scan(&item.Id, &item.Owner, &item.Subject, &item.StartTime, &item.EndTime, &details, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if details != "" {
		item.Details = []byte(details)
	}

	return &item, nil
}

func detailsText(item *ScheduledItem) string {
	if len(item.Details) == 0 {
		return "{}"
	}

	return string(item.Details)
}
