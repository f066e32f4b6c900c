package inmem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/expense"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/permission"
)

func setClock(t *testing.T, now time.Time) *time.Time {
	t.Helper()
	clock := now
	NowFunc = func() time.Time { return clock }
	t.Cleanup(func() { NowFunc = time.Now })
	return &clock
}

func seeded(t *testing.T) (*DB, context.Context, context.Context) {
	t.Helper()
	db := Open()
	Seed(db)
	admin := core.ContextWithToken(context.Background(), db.IssueToken(DemoAdminEmail))
	acc := core.ContextWithToken(context.Background(), db.IssueToken(DemoAccountantEmail))
	return db, admin, acc
}

func TestDashboardStats(t *testing.T) {
	setClock(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	db, _, acc := seeded(t)

	_, err := NewInvoiceRepository(db).PayInvoice(acc, invoice.Payment{InvoiceID: "inv-1", Amount: decimal.NewFromInt(1500), IdempotencyKey: "k"})
	require.NoError(t, err)
	_, err = NewExpenseRepository(db).CreateExpense(acc, expense.NewExpense{Title: "Chalk", Amount: decimal.NewFromInt(200)})
	require.NoError(t, err)

	stats, err := NewDashboardRepository(db).GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalStudents)
	assert.Equal(t, 1, stats.TotalInvoices)
	assert.Equal(t, 1, stats.PartialInvoices)
	assert.Equal(t, "1500", stats.TotalCollected.String())
	assert.Equal(t, "3000", stats.TotalOutstanding.String())
	assert.Equal(t, "200", stats.TotalExpenses.String())
	require.Len(t, stats.MonthlyCollection, 1)
	assert.Equal(t, "1500", stats.MonthlyCollection[0].Amount.String())
}

func TestStudentReport(t *testing.T) {
	db, _, _ := seeded(t)

	students, err := NewReportRepository(db).QueryStudentReport(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 3)
	for _, s := range students {
		assert.Equal(t, "Main Campus", s.CampusName, s.ID)
	}
}

func TestPayInvoice_replay(t *testing.T) {
	db, _, acc := seeded(t)
	repo := NewInvoiceRepository(db)
	p := invoice.Payment{InvoiceID: "inv-1", Amount: decimal.NewFromInt(4500), IdempotencyKey: "same"}

	first, err := repo.PayInvoice(acc, p)
	require.NoError(t, err)
	second, err := repo.PayInvoice(acc, p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, fee.StatusPaid, second.Invoice.Status)

	_, err = repo.PayInvoice(acc, invoice.Payment{InvoiceID: "nope", Amount: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestDeleteInvoice_permissionWindow(t *testing.T) {
	clock := setClock(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	db, admin, acc := seeded(t)
	invoices := NewInvoiceRepository(db)
	perms := NewPermissionRepository(db)

	assert.True(t, errors.Is(invoices.DeleteInvoice(acc, "inv-1"), core.ErrForbidden))

	r, err := perms.CreateRequest(acc, permission.NewRequest{Reason: "typo", RequestedDuration: 10})
	require.NoError(t, err)
	_, err = perms.ApproveRequest(acc, r.ID, 10)
	assert.True(t, errors.Is(err, core.ErrForbidden), "accountants cannot approve")
	_, err = perms.ApproveRequest(admin, r.ID, 10)
	require.NoError(t, err)

	mine, err := perms.QueryMyRequests(acc)
	require.NoError(t, err)
	assert.True(t, mine.HasActivePermission)

	*clock = clock.Add(11 * time.Minute)
	assert.True(t, errors.Is(invoices.DeleteInvoice(acc, "inv-1"), core.ErrForbidden), "window closed")

	require.NoError(t, invoices.DeleteInvoice(admin, "inv-1"))
	assert.True(t, errors.Is(invoices.DeleteInvoice(admin, "inv-1"), core.ErrNotFound))
}
