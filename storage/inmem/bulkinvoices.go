package inmem

import (
	"context"
	"sort"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/bulkinvoice"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/student"
)

const bulkHistoryMonths = 6

type bulkInvoiceRepository struct {
	db *DB
}

func NewBulkInvoiceRepository(db *DB) bulkinvoice.Repository {
	return &bulkInvoiceRepository{db: db}
}

// GenerateBulkInvoice bills every listed student; each one's positive balance is added as arrears.
func (repo *bulkInvoiceRepository) GenerateBulkInvoice(_ context.Context, req bulkinvoice.GenerateRequest) (bulkinvoice.BulkInvoice, error) {
	repo.db.bulk.Lock()
	defer repo.db.bulk.Unlock()
	repo.db.invoice.Lock()
	defer repo.db.invoice.Unlock()
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	now := NowFunc().UTC()
	bi := bulkinvoice.BulkInvoice{
		Info: bulkinvoice.Info{
			ID:        newID(),
			ClassName: req.ClassName,
			FeeMonth:  req.FeeMonth,
			Status:    fee.StatusUnpaid,
			CreatedAt: now,
		},
	}

	var missing []core.FieldError
	for _, id := range req.StudentIDs {
		if _, ok := repo.db.student.table[id]; !ok {
			missing = append(missing, core.FieldError{Field: "studentIds", Error: "unknown student " + id})
		}
	}
	if len(missing) > 0 {
		return bulkinvoice.BulkInvoice{}, core.NewValidationError(student.ErrNotFound, missing...)
	}

	for _, id := range req.StudentIDs {
		s := repo.db.student.table[id]
		charges := req.Breakdown.Merge(fee.Breakdown{})
		if s.CurBalance.IsPositive() {
			charges.Set(fee.Arrears, s.CurBalance)
		}
		total := fee.ComputeTotal(charges, fee.SlipFields).Total

		inv := repo.db.invoice.put(invoice.Invoice{
			StudentID:        s.ID,
			StudentName:      s.Name,
			ClassName:        s.ClassName,
			FeeMonth:         req.FeeMonth,
			TotalFee:         total,
			RemainingBalance: total,
			Status:           fee.StatusUnpaid,
			CreatedAt:        now,
		}, charges)

		bi.Students = append(bi.Students, bulkinvoice.Entry{
			Student:        *s,
			LatestInvoice:  inv,
			CurrentCharges: charges,
			History:        lastPayments(repo.db.invoice.history[s.ID], bulkHistoryMonths),
		})
	}
	bi.Info.TotalStudents = len(bi.Students)

	repo.db.bulk.table[bi.Info.ID] = &bi
	repo.db.bulk.order = append(repo.db.bulk.order, bi.Info.ID)
	return bi, nil
}

func lastPayments(history []fee.MonthlyPayment, n int) []fee.MonthlyPayment {
	out := append([]fee.MonthlyPayment{}, history...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date().After(out[j].Date()) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (repo *bulkInvoiceRepository) QueryBulkInvoices(_ context.Context) ([]bulkinvoice.Info, error) {
	repo.db.bulk.RLock()
	defer repo.db.bulk.RUnlock()

	infos := make([]bulkinvoice.Info, 0, len(repo.db.bulk.order))
	for i := len(repo.db.bulk.order) - 1; i >= 0; i-- { // newest first
		infos = append(infos, repo.db.bulk.table[repo.db.bulk.order[i]].Info)
	}
	return infos, nil
}

func (repo *bulkInvoiceRepository) GetBulkInvoice(_ context.Context, id string) (bulkinvoice.BulkInvoice, error) {
	repo.db.bulk.RLock()
	defer repo.db.bulk.RUnlock()
	if bi, ok := repo.db.bulk.table[id]; ok {
		return *bi, nil
	}
	return bulkinvoice.BulkInvoice{}, bulkinvoice.ErrNotFound
}
