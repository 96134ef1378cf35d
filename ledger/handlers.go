package ledger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"focus-hub/pkg/auth"
	"focus-hub/pkg/rest"
)

type Handlers interface {
	PostExpense(gctx *gin.Context)
	GetExpenses(gctx *gin.Context)
	PutBudget(gctx *gin.Context)
	GetBudget(gctx *gin.Context)
	GetBudgets(gctx *gin.Context)
}

type handlers struct {
	repository Repository
}

func NewHandlers(repository Repository) Handlers {
	return &handlers{repository: repository}
}

func Routes(router gin.IRoutes, h Handlers) {
	router.POST("/expense", h.PostExpense)
	router.GET("/expenses", h.GetExpenses)
	router.PUT("/budget", h.PutBudget)
	router.GET("/budget", auth.VerifyEmail(), h.GetBudget)
	router.GET("/budgets", h.GetBudgets)
}

func (h *handlers) PostExpense(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	var draft ExpenseDraft

	err = gctx.ShouldBindJSON(&draft)
	if err != nil {
		rest.Abort(gctx, "expense validation failed", rest.Validation("malformed body: %v", err))
		return
	}

	err = draft.validate()
	if err != nil {
		rest.Abort(gctx, "expense validation failed", err)
		return
	}

	saved, err := h.repository.InsertExpense(ctx, &Expense{
		Owner:    owner,
		BudgetId: draft.BudgetId,
		Title:    draft.Title,
		Category: draft.Category,
		Amount:   draft.Amount,
		Date:     draft.Date,
		Month:    draft.Date.UTC().Format(monthLayout),
	})
	if err != nil {
		rest.Abort(gctx, "saving expense failed", err)
		return
	}

	log.Ctx(ctx).Info().Str("expense_id", saved.Id).Str("month", saved.Month).Msg("expense recorded")
	gctx.JSON(http.StatusCreated, saved)
}

func (h *handlers) GetExpenses(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	month := gctx.Query("month")
	if month != "" {
		err = checkMonth(month)
		if err != nil {
			rest.Abort(gctx, "listing expenses failed", err)
			return
		}
	}

	expenses, err := h.repository.ListExpenses(ctx, owner, gctx.Query("budgetId"), month)
	if err != nil {
		rest.Abort(gctx, "listing expenses failed", err)
		return
	}

	gctx.JSON(http.StatusOK, expenses)
}

func (h *handlers) PutBudget(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	var draft BudgetDraft

	err = gctx.ShouldBindJSON(&draft)
	if err != nil {
		rest.Abort(gctx, "month, amount and userEmail are required", rest.Validation("malformed body: %v", err))
		return
	}

	err = draft.validate()
	if err != nil {
		rest.Abort(gctx, "month, amount and userEmail are required", err)
		return
	}

	saved, err := h.repository.UpsertBudget(ctx, &Budget{Owner: owner, Month: draft.Month, Amount: draft.Amount})
	if err != nil {
		rest.Abort(gctx, "saving budget failed", err)
		return
	}

	gctx.JSON(http.StatusOK, saved)
}

func (h *handlers) GetBudget(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	month := gctx.Query("month")

	err = checkMonth(month)
	if err != nil {
		rest.Abort(gctx, "getting budget failed", err)
		return
	}

	budget, err := h.repository.FindBudget(ctx, owner, month)
	if err != nil {
		rest.Abort(gctx, "getting budget failed", err)
		return
	}

	if budget == nil {
		rest.Abort(gctx, "Budget not found", rest.NotFound("no budget for %s", month))
		return
	}

	expenses, err := h.repository.ListExpenses(ctx, owner, "", month)
	if err != nil {
		rest.Abort(gctx, "getting budget failed", err)
		return
	}

	gctx.JSON(http.StatusOK, Summarize(*budget, expenses))
}

func (h *handlers) GetBudgets(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	budgets, err := h.repository.ListBudgets(ctx, owner)
	if err != nil {
		rest.Abort(gctx, "listing budgets failed", err)
		return
	}

	gctx.JSON(http.StatusOK, budgets)
}

func checkMonth(month string) error {
	if month == "" {
		return rest.Validation("month is required")
	}

	_, err := time.Parse(monthLayout, month)
	if err != nil {
		return rest.Validation("month must be formatted as YYYY-MM")
	}

	return nil
}
