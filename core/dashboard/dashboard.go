package dashboard

import (
	"context"

	"github.com/shopspring/decimal"
)

type MonthAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// Stats are the admin dashboard figures, computed by the backend.
type Stats struct {
	TotalStudents     int             `json:"totalStudents"`
	TotalInvoices     int             `json:"totalInvoices"`
	PaidInvoices      int             `json:"paidInvoices"`
	PartialInvoices   int             `json:"partialInvoices"`
	UnpaidInvoices    int             `json:"unpaidInvoices"`
	TotalCollected    decimal.Decimal `json:"totalCollected"`
	TotalOutstanding  decimal.Decimal `json:"totalOutstanding"`
	TotalExpenses     decimal.Decimal `json:"totalExpenses"`
	MonthlyCollection []MonthAmount   `json:"monthlyCollection"`
}

// CollectionRate is the collected share of everything billed, in percent (2 decimals).
func (s Stats) CollectionRate() decimal.Decimal {
	billed := s.TotalCollected.Add(s.TotalOutstanding)
	if !billed.IsPositive() {
		return decimal.Zero
	}
	return s.TotalCollected.Mul(decimal.NewFromInt(100)).Div(billed).Round(2)
}

// Net is what was collected minus the expenses.
func (s Stats) Net() decimal.Decimal {
	return s.TotalCollected.Sub(s.TotalExpenses)
}

type (
	Repository interface {
		GetDashboardStats(ctx context.Context) (Stats, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	return svc.repo.GetDashboardStats(ctx)
}
