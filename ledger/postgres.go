package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"focus-hub/pkg/resources"
)

const (
	expenseColumns = "id, owner, budget_id, title, category, amount::text, spent_on, month, created_at"
	budgetColumns  = "id, owner, month, amount::text, created_at, updated_at"
)

type Repository interface {
	InsertExpense(ctx context.Context, expense *Expense) (*Expense, error)
	// ListExpenses returns the owner's expenses, narrowed by whichever of
	// budgetId and month are not empty.
	ListExpenses(ctx context.Context, owner string, budgetId string, month string) ([]Expense, error)
	UpsertBudget(ctx context.Context, budget *Budget) (*Budget, error)
	FindBudget(ctx context.Context, owner string, month string) (*Budget, error)
	ListBudgets(ctx context.Context, owner string) ([]Budget, error)
}

type repository struct {
	tracer   trace.Tracer
	expenses *resources.DBMetrics
	budgets  *resources.DBMetrics
	pool     resources.DBInstance
}

func NewRepository(pool resources.DBInstance) Repository {
	return &repository{
		tracer:   otel.GetTracerProvider().Tracer("focus-hub/ledger"),
		expenses: resources.NewDBMetrics("focus-hub/db", "expenses"),
		budgets:  resources.NewDBMetrics("focus-hub/db", "budgets"),
		pool:     pool,
	}
}

func (r *repository) InsertExpense(ctx context.Context, expense *Expense) (*Expense, error) {
	start := time.Now()

	var err error

	defer func() { r.expenses.Observe(ctx, "insert", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.InsertExpense")
	defer span.End()

	saved, err := scanExpense(r.pool.QueryRow(ctx,
		"INSERT INTO expenses (owner, budget_id, title, category, amount, spent_on, month) "+
			"VALUES ($1, $2, $3, $4, $5::numeric, $6, $7) RETURNING "+expenseColumns,
		expense.Owner, expense.BudgetId, expense.Title, expense.Category, expense.Amount.String(), expense.Date, expense.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}

	return saved, nil
}

func (r *repository) ListExpenses(ctx context.Context, owner string, budgetId string, month string) ([]Expense, error) {
	start := time.Now()

	var err error

	defer func() { r.expenses.Observe(ctx, "list", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.ListExpenses")
	defer span.End()

	sql := "SELECT " + expenseColumns + " FROM expenses WHERE owner = $1"
	args := []any{owner}

	if budgetId != "" {
		args = append(args, budgetId)
		sql += fmt.Sprintf(" AND budget_id = $%d", len(args))
	}

	if month != "" {
		args = append(args, month)
		sql += fmt.Sprintf(" AND month = $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, sql+" ORDER BY spent_on DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Expense, error) {
		expense, scanErr := scanExpense(row)
		if scanErr != nil {
			return Expense{}, scanErr
		}

		return *expense, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan expenses: %w", err)
	}

	return expenses, nil
}

func (r *repository) UpsertBudget(ctx context.Context, budget *Budget) (*Budget, error) {
	start := time.Now()

	var err error

	defer func() { r.budgets.Observe(ctx, "upsert", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.UpsertBudget")
	defer span.End()

	saved, err := scanBudget(r.pool.QueryRow(ctx,
		"INSERT INTO budgets (owner, month, amount) VALUES ($1, $2, $3::numeric) "+
			"ON CONFLICT (owner, month) DO UPDATE SET amount = EXCLUDED.amount, updated_at = now() "+
			"RETURNING "+budgetColumns,
		budget.Owner, budget.Month, budget.Amount.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert budget: %w", err)
	}

	return saved, nil
}

func (r *repository) FindBudget(ctx context.Context, owner string, month string) (*Budget, error) {
	start := time.Now()

	var err error

	defer func() { r.budgets.Observe(ctx, "find", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.FindBudget")
	defer span.End()

	budget, err := scanBudget(r.pool.QueryRow(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE owner = $1 AND month = $2", owner, month))
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	return budget, nil
}

func (r *repository) ListBudgets(ctx context.Context, owner string) ([]Budget, error) {
	start := time.Now()

	var err error

	defer func() { r.budgets.Observe(ctx, "list", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.ListBudgets")
	defer span.End()

	rows, err := r.pool.Query(ctx, "SELECT "+budgetColumns+" FROM budgets WHERE owner = $1 ORDER BY month DESC", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	budgets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Budget, error) {
		budget, scanErr := scanBudget(row)
		if scanErr != nil {
			return Budget{}, scanErr
		}

		return *budget, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan budgets: %w", err)
	}

	return budgets, nil
}

func scanExpense(row pgx.Row) (*Expense, error) {
	var (
		expense Expense
		amount  string
	)

	err := row.Scan(&expense.Id, &expense.Owner, &expense.BudgetId, &expense.Title, &expense.Category,
		&amount, &expense.Date, &expense.Month, &expense.CreatedAt)
	if err != nil {
		return nil, err
	}

	expense.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}

	return &expense, nil
}

func scanBudget(row pgx.Row) (*Budget, error) {
	var (
		budget Budget
		amount string
	)

	err := row.Scan(&budget.Id, &budget.Owner, &budget.Month, &amount, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return nil, err
	}

	budget.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}

	return &budget, nil
}
