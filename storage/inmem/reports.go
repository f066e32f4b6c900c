package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core/dashboard"
	"github.com/trezcool/challan/core/expense"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/report"
	"github.com/trezcool/challan/core/student"
	"github.com/trezcool/challan/core/voucher"
)

type reportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{db: db}
}

func NewDashboardRepository(db *DB) dashboard.Repository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) QueryStudentReport(_ context.Context) ([]student.Student, error) {
	repo.db.campus.RLock()
	defer repo.db.campus.RUnlock()
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	students := repo.db.student.query(nil)
	for i := range students {
		if c, ok := repo.db.campus.table[students[i].CampusID]; ok {
			students[i].CampusName = c.Name
		}
	}
	return students, nil
}

func (repo *reportRepository) GetDashboardStats(_ context.Context) (dashboard.Stats, error) {
	var stats dashboard.Stats

	repo.db.invoice.RLock()
	monthly := make(map[time.Time]decimal.Decimal)
	for _, id := range repo.db.invoice.order {
		rec, ok := repo.db.invoice.table[id]
		if !ok {
			continue
		}
		inv := rec.invoice
		stats.TotalInvoices++
		switch fee.NormalizeStatus(string(inv.Status)) {
		case fee.StatusPaid:
			stats.PaidInvoices++
		case fee.StatusPartial:
			stats.PartialInvoices++
		default:
			stats.UnpaidInvoices++
		}
		stats.TotalCollected = stats.TotalCollected.Add(inv.PaidAmount)
		stats.TotalOutstanding = stats.TotalOutstanding.Add(inv.RemainingBalance)
	}
	for _, payments := range repo.db.invoice.history {
		for _, p := range payments {
			d := p.Date()
			m := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
			monthly[m] = monthly[m].Add(p.PaidAmount)
		}
	}
	repo.db.invoice.RUnlock()

	months := make([]time.Time, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	for _, m := range months {
		stats.MonthlyCollection = append(stats.MonthlyCollection, dashboard.MonthAmount{Month: voucher.MonthLabel(m), Amount: monthly[m]})
	}

	repo.db.student.RLock()
	stats.TotalStudents = len(repo.db.student.table)
	repo.db.student.RUnlock()

	repo.db.expense.RLock()
	stats.TotalExpenses = expense.Total(repo.db.expense.table)
	repo.db.expense.RUnlock()
	return stats, nil
}
