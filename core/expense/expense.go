package expense

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core"
)

type Expense struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}

type NewExpense struct {
	Title  string          `json:"title" validate:"notblank"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
}

func (ne *NewExpense) Validate() error {
	ne.Title = core.CleanString(ne.Title)
	return core.Validate.Struct(ne)
}

// Total sums the amounts of expenses.
func Total(expenses []Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

type (
	Repository interface {
		CreateExpense(ctx context.Context, ne NewExpense) (Expense, error)
		QueryExpenses(ctx context.Context) ([]Expense, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ne NewExpense) (Expense, error) {
	if err := ne.Validate(); err != nil {
		return Expense{}, err
	}
	return svc.repo.CreateExpense(ctx, ne)
}

func (svc *Service) List(ctx context.Context) ([]Expense, error) {
	return svc.repo.QueryExpenses(ctx)
}
