package bulkinvoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/student"
	"github.com/trezcool/challan/core/voucher"
)

var (
	// errors
	ErrNotFound   = fmt.Errorf("bulk invoice %w", core.ErrNotFound)
	errNoStudents = errors.New("select at least one student")

	nowFunc = time.Now // mockable
)

type Info struct {
	ID            string     `json:"id"`
	ClassName     string     `json:"className"`
	FeeMonth      string     `json:"feeMonth"`
	TotalStudents int        `json:"totalStudents"`
	Status        fee.Status `json:"paymentStatus"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Entry is the snapshot of one student taken when the batch was generated.
type Entry struct {
	Student        student.Student      `json:"studentInfo"`
	LatestInvoice  invoice.Invoice      `json:"latestInvoice"`
	CurrentCharges fee.Breakdown        `json:"currentPaymentBreakdown"`
	History        []fee.MonthlyPayment `json:"lastSixMonthsHistory"`
}

type BulkInvoice struct {
	Info     Info    `json:"bulkInvoiceInfo"`
	Students []Entry `json:"students"`
}

// GenerateRequest bills the same breakdown to many students of a class.
// Arrears are not part of it: the backend takes them from each student's balance.
type GenerateRequest struct {
	ClassName  string          `json:"className" validate:"notblank"`
	FeeMonth   string          `json:"feeMonth" validate:"notblank"`
	StudentIDs []string        `json:"studentIds"`
	Breakdown  fee.Breakdown   `json:"feeBreakdown"`
	Total      decimal.Decimal `json:"totalAmount"`
}

func (gr *GenerateRequest) Validate() error {
	gr.ClassName = core.CleanString(gr.ClassName)
	gr.FeeMonth = core.CleanString(gr.FeeMonth)
	if err := core.Validate.Struct(gr); err != nil {
		return err
	}

	ids := make([]string, 0, len(gr.StudentIDs))
	seen := make(map[string]bool, len(gr.StudentIDs))
	for _, id := range gr.StudentIDs {
		if id = core.CleanString(id); id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return core.NewValidationError(errNoStudents, core.FieldError{Field: "studentIds", Error: errNoStudents.Error()})
	}
	gr.StudentIDs = ids

	if err := fee.CheckNonNegative(gr.Breakdown, fee.BulkFields, "feeBreakdown"); err != nil {
		return err
	}

	delete(gr.Breakdown.Amounts, fee.Arrears)
	gr.Total = fee.ComputeTotal(gr.Breakdown, fee.BulkFields).Total
	return nil
}

type (
	Repository interface {
		GenerateBulkInvoice(ctx context.Context, req GenerateRequest) (BulkInvoice, error)
		QueryBulkInvoices(ctx context.Context) ([]Info, error)
		GetBulkInvoice(ctx context.Context, id string) (BulkInvoice, error)
	}

	Service struct {
		repo    Repository
		schools invoice.SchoolSource
	}
)

func NewService(repo Repository, schools invoice.SchoolSource) *Service {
	return &Service{repo: repo, schools: schools}
}

func (svc *Service) Generate(ctx context.Context, req GenerateRequest) (BulkInvoice, error) {
	if err := req.Validate(); err != nil {
		return BulkInvoice{}, err
	}
	return svc.repo.GenerateBulkInvoice(ctx, req)
}

func (svc *Service) List(ctx context.Context) ([]Info, error) {
	return svc.repo.QueryBulkInvoices(ctx)
}

func (svc *Service) Get(ctx context.Context, id string) (BulkInvoice, error) {
	if core.CleanString(id) == "" {
		return BulkInvoice{}, ErrNotFound
	}
	return svc.repo.GetBulkInvoice(ctx, id)
}

// Print renders every student of the batch, one voucher per copy type, due on BulkDueDay.
// Entries without a student are skipped; an empty batch renders to "".
func (svc *Service) Print(ctx context.Context, id string, opts invoice.PrintOptions) (string, error) {
	bi, err := svc.Get(ctx, id)
	if err != nil {
		return "", err
	}

	inputs := make([]voucher.Input, 0, len(bi.Students))
	schools := make(map[string]voucher.School)
	for _, e := range bi.Students {
		school, ok := schools[e.Student.CampusID]
		if !ok {
			school = svc.schools.School(ctx, e.Student.CampusID)
			schools[e.Student.CampusID] = school
		}
		feeMonth := e.LatestInvoice.FeeMonth
		if feeMonth == "" {
			feeMonth = bi.Info.FeeMonth
		}
		inputs = append(inputs, voucher.Input{
			School:  school,
			Student: e.Student.VoucherStudent(),
			Invoice: voucher.InvoiceInfo{Number: e.LatestInvoice.Number, FeeMonth: feeMonth},
			Charges: e.CurrentCharges,
			History: e.History,
		})
	}

	doc := voucher.Build(inputs, voucher.Options{
		Copies:    opts.Copies,
		DueDay:    voucher.BulkDueDay,
		AutoPrint: opts.AutoPrint,
		Now:       nowFunc(),
	})
	return voucher.Render(doc)
}
