package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/student"
	"github.com/trezcool/challan/core/voucher"
)

type Invoice struct {
	ID               string          `json:"invoiceId"`
	Number           string          `json:"invoiceNumber"`
	StudentID        string          `json:"studentId"`
	StudentName      string          `json:"studentName"`
	ClassName        string          `json:"className"`
	FeeMonth         string          `json:"feeMonth"`
	TotalFee         decimal.Decimal `json:"totalFee"`
	PaidAmount       decimal.Decimal `json:"paidAmount"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	Status           fee.Status      `json:"paymentStatus"`
	CreatedAt        time.Time       `json:"createdAt"`
	InvoiceURL       string          `json:"invoiceUrl,omitempty"`
}

// List is an invoice list along with the caller's edit permission, fetched together.
type List struct {
	Invoices            []Invoice `json:"invoices"`
	HasActivePermission bool      `json:"hasActivePermission"`
}

// Details is everything needed to print the challan of an invoice.
type Details struct {
	Invoice         Invoice              `json:"invoice"`
	Students        []student.Student    `json:"students"`
	CurrentCharges  fee.Breakdown        `json:"currentPaymentBreakdown"`
	History         []fee.MonthlyPayment `json:"paymentHistory"`
	PreviousBalance decimal.Decimal      `json:"previousBalance"`
}

// Student returns the billed student; ok is false when the backend sent none.
func (d Details) Student() (student.Student, bool) {
	if len(d.Students) == 0 {
		return student.Student{}, false
	}
	return d.Students[0], true
}

// Charges are the current charges, with the previous balance carried as arrears
// when the backend did not break it down.
func (d Details) Charges() fee.Breakdown {
	charges := d.CurrentCharges.Merge(fee.Breakdown{})
	if d.PreviousBalance.IsPositive() && charges.Get(fee.Arrears).IsZero() {
		charges.Set(fee.Arrears, d.PreviousBalance)
	}
	return charges
}

// VoucherInput maps the details to a challan; ok is false when there is no student to print.
func (d Details) VoucherInput(school voucher.School) (voucher.Input, bool) {
	std, ok := d.Student()
	if !ok {
		return voucher.Input{}, false
	}
	return voucher.Input{
		School:  school,
		Student: std.VoucherStudent(),
		Invoice: voucher.InvoiceInfo{Number: d.Invoice.Number, FeeMonth: d.Invoice.FeeMonth},
		Charges: d.Charges(),
		History: d.History,
	}, true
}

// GenerateRequest is the fee-slip form of a single student.
type GenerateRequest struct {
	StudentID string          `json:"studentId" validate:"notblank"`
	FeeMonth  string          `json:"feeMonth" validate:"notblank"`
	Breakdown fee.Breakdown   `json:"feeBreakdown"`
	Total     decimal.Decimal `json:"totalAmount"`
}

// Validate rejects blank identifiers and negative amounts, then computes Total from the slip fields.
func (gr *GenerateRequest) Validate() error {
	gr.StudentID = core.CleanString(gr.StudentID)
	gr.FeeMonth = core.CleanString(gr.FeeMonth)
	if err := core.Validate.Struct(gr); err != nil {
		return err
	}
	if err := fee.CheckNonNegative(gr.Breakdown, fee.SlipFields, "feeBreakdown"); err != nil {
		return err
	}
	gr.Total = fee.ComputeTotal(gr.Breakdown, fee.SlipFields).Total
	return nil
}

type Filter struct {
	Status    fee.Status `query:"status"`
	ClassName string     `query:"cn"`
	Search    string     `query:"search"`
}

func (f *Filter) Clean() {
	if f.Status != "" {
		f.Status = fee.NormalizeStatus(string(f.Status))
	}
	f.ClassName = core.CleanString(f.ClassName)
	f.Search = core.CleanString(f.Search, true /* lower */)
}

// Payment is sent to the backend for one submission attempt.
type Payment struct {
	InvoiceID      string          `json:"invoiceId"`
	Amount         decimal.Decimal `json:"amount"`
	Breakdown      fee.Breakdown   `json:"paymentBreakdown"`
	IdempotencyKey string          `json:"idempotencyKey"`
}

// PayRequest is a payment as entered by the user.
type PayRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Breakdown      fee.Breakdown   `json:"paymentBreakdown"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
}

type BalancePayment struct {
	StudentID      string          `json:"studentId" validate:"notblank"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotencyKey"`
}

type Receipt struct {
	Invoice Invoice `json:"invoice"`
	Message string  `json:"message"`
}
