package invoice

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/voucher"
)

var (
	// errors
	ErrNotFound          = fmt.Errorf("invoice %w", core.ErrNotFound)
	ErrPaymentInProgress = errors.New("a payment for this invoice is already being submitted")
	ErrNothingToPrint    = errors.New("the invoice has no student to print")
	ErrAmountNotPositive = errors.New("amount must be greater than 0")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		QueryInvoices(ctx context.Context, filter Filter) (List, error)
		GenerateInvoice(ctx context.Context, req GenerateRequest) (Invoice, error)
		GetInvoiceDetails(ctx context.Context, id string) (Details, error)
		PayInvoice(ctx context.Context, p Payment) (Receipt, error)
		PayBalance(ctx context.Context, p BalancePayment) (Receipt, error)
		DeleteInvoice(ctx context.Context, id string) error
	}

	// SchoolSource resolves the challan header of a campus.
	SchoolSource interface {
		School(ctx context.Context, campusID string) voucher.School
	}

	PrintOptions struct {
		Copies    []voucher.CopyType
		AutoPrint bool
	}

	Service struct {
		repo    Repository
		schools SchoolSource
		mailSvc core.EmailService

		mu       sync.Mutex
		inflight map[string]string // invoice id -> idempotency key
	}
)

func NewService(repo Repository, schools SchoolSource, mailSvc core.EmailService) *Service {
	return &Service{
		repo:     repo,
		schools:  schools,
		mailSvc:  mailSvc,
		inflight: make(map[string]string),
	}
}

// List fetches the invoices matching filter. Search is applied locally.
func (svc *Service) List(ctx context.Context, filter Filter) (List, error) {
	filter.Clean()
	list, err := svc.repo.QueryInvoices(ctx, filter)
	if err != nil {
		return List{}, err
	}
	if filter.Search != "" {
		out := make([]Invoice, 0, len(list.Invoices))
		for _, inv := range list.Invoices {
			hay := strings.ToLower(inv.Number + " " + inv.StudentName + " " + inv.StudentID)
			if strings.Contains(hay, filter.Search) {
				out = append(out, inv)
			}
		}
		list.Invoices = out
	}
	return list, nil
}

func (svc *Service) Generate(ctx context.Context, req GenerateRequest) (Invoice, error) {
	if err := req.Validate(); err != nil {
		return Invoice{}, err
	}
	return svc.repo.GenerateInvoice(ctx, req)
}

func (svc *Service) Details(ctx context.Context, id string) (Details, error) {
	if core.CleanString(id) == "" {
		return Details{}, ErrNotFound
	}
	return svc.repo.GetInvoiceDetails(ctx, id)
}

// AmountFromString reads a user-entered amount; non-numeric input is a validation error.
func AmountFromString(s string) (decimal.Decimal, error) {
	amt, err := fee.ParseAmount(s)
	if err != nil {
		return decimal.Zero, core.NewValidationError(err, core.FieldError{Field: "amount", Error: err.Error()})
	}
	return amt, nil
}

func checkAmount(amt decimal.Decimal) error {
	if !amt.IsPositive() {
		return core.NewValidationError(ErrAmountNotPositive, core.FieldError{Field: "amount", Error: ErrAmountNotPositive.Error()})
	}
	return nil
}

// Pay submits one payment attempt. Non-positive amounts are rejected without calling the backend;
// there is no upper bound. The attempt carries an idempotency key (generated when empty) and a
// second attempt on the same invoice fails while the first one is in flight.
func (svc *Service) Pay(ctx context.Context, invoiceID string, req PayRequest) (Receipt, error) {
	invoiceID = core.CleanString(invoiceID)
	if invoiceID == "" {
		return Receipt{}, ErrNotFound
	}
	if err := checkAmount(req.Amount); err != nil {
		return Receipt{}, err
	}
	if err := fee.CheckNonNegative(req.Breakdown, fee.PaymentFields, "paymentBreakdown"); err != nil {
		return Receipt{}, err
	}

	key := core.CleanString(req.IdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}
	if !svc.acquire(invoiceID, key) {
		return Receipt{}, ErrPaymentInProgress
	}
	defer svc.release(invoiceID)

	return svc.repo.PayInvoice(ctx, Payment{
		InvoiceID:      invoiceID,
		Amount:         req.Amount,
		Breakdown:      req.Breakdown,
		IdempotencyKey: key,
	})
}

// PayBalance settles a previous-balance-only payment, with the same guard as Pay.
func (svc *Service) PayBalance(ctx context.Context, p BalancePayment) (Receipt, error) {
	p.StudentID = core.CleanString(p.StudentID)
	if err := core.Validate.Struct(p); err != nil {
		return Receipt{}, err
	}
	if err := checkAmount(p.Amount); err != nil {
		return Receipt{}, err
	}
	if p.IdempotencyKey == "" {
		p.IdempotencyKey = uuid.NewString()
	}

	lock := "balance:" + p.StudentID
	if !svc.acquire(lock, p.IdempotencyKey) {
		return Receipt{}, ErrPaymentInProgress
	}
	defer svc.release(lock)
	return svc.repo.PayBalance(ctx, p)
}

func (svc *Service) acquire(id, key string) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if _, busy := svc.inflight[id]; busy {
		return false
	}
	svc.inflight[id] = key
	return true
}

func (svc *Service) release(id string) {
	svc.mu.Lock()
	delete(svc.inflight, id)
	svc.mu.Unlock()
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if core.CleanString(id) == "" {
		return ErrNotFound
	}
	return svc.repo.DeleteInvoice(ctx, id)
}

// Print renders the challan of an invoice. It returns "" when the details carry no student.
func (svc *Service) Print(ctx context.Context, id string, opts PrintOptions) (string, error) {
	doc, err := svc.document(ctx, id, opts)
	if err != nil {
		return "", err
	}
	return voucher.Render(doc)
}

func (svc *Service) document(ctx context.Context, id string, opts PrintOptions) (voucher.Document, error) {
	details, err := svc.Details(ctx, id)
	if err != nil {
		return voucher.Document{}, err
	}
	std, ok := details.Student()
	if !ok {
		return voucher.Document{}, nil
	}
	in, _ := details.VoucherInput(svc.schools.School(ctx, std.CampusID))
	return voucher.Build([]voucher.Input{in}, voucher.Options{
		Copies:    opts.Copies,
		DueDay:    voucher.SingleDueDay,
		AutoPrint: opts.AutoPrint,
		Now:       nowFunc(),
	}), nil
}

// EmailVoucher sends the student copy of the challan to `to`, attached as an HTML page.
func (svc *Service) EmailVoucher(ctx context.Context, id string, to mail.Address) error {
	if _, err := mail.ParseAddress(to.Address); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "email", Error: "enter a valid email address"})
	}

	doc, err := svc.document(ctx, id, PrintOptions{Copies: []voucher.CopyType{voucher.CopyStudent}})
	if err != nil {
		return err
	}
	vouchers := doc.Vouchers()
	if len(vouchers) == 0 {
		return ErrNothingToPrint
	}
	html, err := voucher.Render(doc)
	if err != nil {
		return err
	}

	v := vouchers[0]
	msg := &core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      fmt.Sprintf("Fee challan %s - %s", v.Invoice.FeeMonth, v.Student.Name),
		TemplateName: "challan",
		SchoolName:   v.School.Name,
		TemplateData: map[string]string{
			"FatherName":  v.Student.FatherName,
			"StudentName": v.Student.Name,
			"FeeMonth":    v.Invoice.FeeMonth,
			"DueDate":     v.DueDate.Format("02-Jan-2006"),
			"Amount":      fee.FormatAmount(v.TotalWithinDueDate),
		},
	}
	if err := msg.Attach(strings.NewReader(html), "challan-"+v.Invoice.Number+".html", "text/html"); err != nil {
		return err
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}
