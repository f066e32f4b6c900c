package inmem

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/permission"
	"github.com/trezcool/challan/core/student"
)

type invoiceRepository struct {
	db *DB
}

func NewInvoiceRepository(db *DB) invoice.Repository {
	return &invoiceRepository{db: db}
}

// AddInvoice stores inv with the charges it was generated from.
func (db *DB) AddInvoice(inv invoice.Invoice, charges fee.Breakdown) invoice.Invoice {
	db.invoice.Lock()
	defer db.invoice.Unlock()
	return db.invoice.put(inv, charges)
}

// AddHistory appends monthly payments to the history of a student.
func (db *DB) AddHistory(studentID string, payments ...fee.MonthlyPayment) {
	db.invoice.Lock()
	defer db.invoice.Unlock()
	db.invoice.history[studentID] = append(db.invoice.history[studentID], payments...)
}

func (t *invoiceTable) put(inv invoice.Invoice, charges fee.Breakdown) invoice.Invoice {
	if inv.ID == "" {
		inv.ID = newID()
	}
	if inv.Number == "" {
		t.seq++
		inv.Number = fmt.Sprintf("INV-%05d", t.seq)
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = NowFunc().UTC()
	}
	if _, ok := t.table[inv.ID]; !ok {
		t.order = append(t.order, inv.ID)
	}
	t.table[inv.ID] = &invoiceRecord{invoice: inv, charges: charges}
	return inv
}

func (repo *invoiceRepository) QueryInvoices(ctx context.Context, filter invoice.Filter) (invoice.List, error) {
	usr, err := repo.db.caller(ctx)
	if err != nil {
		return invoice.List{}, err
	}
	active := repo.db.hasActivePermission(usr)

	repo.db.invoice.RLock()
	defer repo.db.invoice.RUnlock()

	list := invoice.List{Invoices: make([]invoice.Invoice, 0, len(repo.db.invoice.order)), HasActivePermission: active}
	for _, id := range repo.db.invoice.order {
		rec, ok := repo.db.invoice.table[id]
		if !ok {
			continue
		}
		inv := rec.invoice
		if filter.Status != "" && fee.NormalizeStatus(string(inv.Status)) != filter.Status {
			continue
		}
		if filter.ClassName != "" && !strings.EqualFold(inv.ClassName, filter.ClassName) {
			continue
		}
		list.Invoices = append(list.Invoices, inv)
	}
	return list, nil
}

func (repo *invoiceRepository) GenerateInvoice(_ context.Context, req invoice.GenerateRequest) (invoice.Invoice, error) {
	repo.db.invoice.Lock()
	defer repo.db.invoice.Unlock()
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	s, ok := repo.db.student.table[req.StudentID]
	if !ok {
		return invoice.Invoice{}, student.ErrNotFound
	}
	inv := invoice.Invoice{
		StudentID:        s.ID,
		StudentName:      s.Name,
		ClassName:        s.ClassName,
		FeeMonth:         req.FeeMonth,
		TotalFee:         req.Total,
		RemainingBalance: req.Total,
		Status:           fee.StatusUnpaid,
	}
	return repo.db.invoice.put(inv, req.Breakdown), nil
}

func (repo *invoiceRepository) GetInvoiceDetails(_ context.Context, id string) (invoice.Details, error) {
	repo.db.invoice.RLock()
	defer repo.db.invoice.RUnlock()
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	rec, ok := repo.db.invoice.table[id]
	if !ok {
		return invoice.Details{}, invoice.ErrNotFound
	}
	details := invoice.Details{
		Invoice:        rec.invoice,
		CurrentCharges: rec.charges,
		History:        append([]fee.MonthlyPayment{}, repo.db.invoice.history[rec.invoice.StudentID]...),
	}
	if s, ok := repo.db.student.table[rec.invoice.StudentID]; ok {
		details.Students = []student.Student{*s}
		details.PreviousBalance = s.PrevBal
	}
	return details, nil
}

func (repo *invoiceRepository) PayInvoice(_ context.Context, p invoice.Payment) (invoice.Receipt, error) {
	repo.db.invoice.Lock()
	defer repo.db.invoice.Unlock()

	if r, ok := repo.db.invoice.receipts[p.IdempotencyKey]; ok && p.IdempotencyKey != "" {
		return r, nil // replayed attempt
	}
	rec, ok := repo.db.invoice.table[p.InvoiceID]
	if !ok {
		return invoice.Receipt{}, invoice.ErrNotFound
	}

	inv := &rec.invoice
	inv.PaidAmount = inv.PaidAmount.Add(p.Amount)
	inv.RemainingBalance = decimal.Max(inv.TotalFee.Sub(inv.PaidAmount), decimal.Zero)
	inv.Status = statusOf(inv.TotalFee, inv.PaidAmount)

	now := NowFunc().UTC()
	repo.db.invoice.history[inv.StudentID] = append(repo.db.invoice.history[inv.StudentID], fee.MonthlyPayment{
		FeeMonth:   inv.FeeMonth,
		PaidAmount: p.Amount,
		PaidAt:     now,
	})

	repo.db.student.Lock()
	if s, ok := repo.db.student.table[inv.StudentID]; ok {
		s.FeePaid = s.FeePaid.Add(p.Amount)
		s.CurBalance = s.CurBalance.Sub(p.Amount)
		s.Status = statusOf(s.AllTotal, s.FeePaid)
		s.UpdatedAt = now
	}
	repo.db.student.Unlock()

	r := invoice.Receipt{Invoice: *inv, Message: "Payment recorded"}
	if p.IdempotencyKey != "" {
		repo.db.invoice.receipts[p.IdempotencyKey] = r
	}
	return r, nil
}

func (repo *invoiceRepository) PayBalance(_ context.Context, p invoice.BalancePayment) (invoice.Receipt, error) {
	repo.db.invoice.Lock()
	defer repo.db.invoice.Unlock()

	if r, ok := repo.db.invoice.receipts[p.IdempotencyKey]; ok && p.IdempotencyKey != "" {
		return r, nil
	}

	repo.db.student.Lock()
	defer repo.db.student.Unlock()
	s, ok := repo.db.student.table[p.StudentID]
	if !ok {
		return invoice.Receipt{}, student.ErrNotFound
	}
	s.PrevBal = decimal.Max(s.PrevBal.Sub(p.Amount), decimal.Zero)
	s.UpdatedAt = NowFunc().UTC()

	r := invoice.Receipt{Message: "Previous balance payment recorded"}
	if p.IdempotencyKey != "" {
		repo.db.invoice.receipts[p.IdempotencyKey] = r
	}
	return r, nil
}

// DeleteInvoice is refused unless the caller is an admin or holds an active permission.
func (repo *invoiceRepository) DeleteInvoice(ctx context.Context, id string) error {
	usr, err := repo.db.caller(ctx)
	if err != nil {
		return err
	}
	if !permission.CanEdit(usr, repo.db.hasActivePermission(usr)) {
		return core.ErrForbidden
	}

	repo.db.invoice.Lock()
	defer repo.db.invoice.Unlock()
	if _, ok := repo.db.invoice.table[id]; !ok {
		return invoice.ErrNotFound
	}
	delete(repo.db.invoice.table, id)
	return nil
}
