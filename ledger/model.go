package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"focus-hub/pkg/rest"
)

const monthLayout = "2006-01"

type Expense struct {
	Id        string          `json:"id"`
	Owner     string          `json:"owner"`
	BudgetId  string          `json:"budgetId,omitempty"`
	Title     string          `json:"title"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Month     string          `json:"month"`
	CreatedAt time.Time       `json:"createdAt"`
}

type ExpenseDraft struct {
	Title    string          `json:"title"    validate:"required,max=100"`
	Category string          `json:"category" validate:"required,max=50"`
	BudgetId string          `json:"budgetId" validate:"max=64"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"     validate:"required"`
}

func (d ExpenseDraft) validate() error {
	err := rest.Validate(d)
	if err != nil {
		return err
	}

	return positive(d.Amount)
}

type Budget struct {
	Id        string          `json:"id"`
	Owner     string          `json:"owner"`
	Month     string          `json:"month"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type BudgetDraft struct {
	Month  string          `json:"month" validate:"required,month"`
	Amount decimal.Decimal `json:"amount"`
}

func (d BudgetDraft) validate() error {
	err := rest.Validate(d)
	if err != nil {
		return err
	}

	return positive(d.Amount)
}

// BudgetSummary is a budget together with what was spent in its month.
type BudgetSummary struct {
	Budget
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

func Summarize(budget Budget, expenses []Expense) BudgetSummary {
	spent := decimal.Zero
	for _, expense := range expenses {
		spent = spent.Add(expense.Amount)
	}

	return BudgetSummary{Budget: budget, Spent: spent, Remaining: budget.Amount.Sub(spent)}
}

func positive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return rest.Validation("amount must be greater than zero")
	}

	return nil
}
