package invoice_test

import (
	"context"
	"net/mail"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/campus"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/storage/inmem"
)

type countingRepo struct {
	invoice.Repository
	pays    int32
	entered chan struct{}
	release chan struct{}
}

func (r *countingRepo) PayInvoice(ctx context.Context, p invoice.Payment) (invoice.Receipt, error) {
	atomic.AddInt32(&r.pays, 1)
	if r.entered != nil {
		r.entered <- struct{}{}
		<-r.release
	}
	return r.Repository.PayInvoice(ctx, p)
}

type mailSpy struct {
	mu   sync.Mutex
	msgs []*core.EmailMessage
}

func (m *mailSpy) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, messages...)
}

type fixture struct {
	db    *inmem.DB
	repo  *countingRepo
	mails *mailSpy
	svc   *invoice.Service
	ctx   context.Context // accountant
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := inmem.Open()
	inmem.Seed(db)

	conf := &core.Config{School: core.SchoolConfig{Name: "Default School"}}
	schools := campus.NewDirectory(campus.NewService(inmem.NewCampusRepository(db)), conf, nil)
	repo := &countingRepo{Repository: inmem.NewInvoiceRepository(db)}
	mails := &mailSpy{}
	return fixture{
		db:    db,
		repo:  repo,
		mails: mails,
		svc:   invoice.NewService(repo, schools, mails),
		ctx:   core.ContextWithToken(context.Background(), db.IssueToken(inmem.DemoAccountantEmail)),
	}
}

func TestService_Pay_Guard(t *testing.T) {
	f := setup(t)

	for _, amt := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := f.svc.Pay(f.ctx, "inv-1", invoice.PayRequest{Amount: amt})
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
	}
	assert.Zero(t, atomic.LoadInt32(&f.repo.pays), "no backend call for rejected amounts")

	_, err := invoice.AmountFromString("abc")
	assert.True(t, core.IsValidationError(err))

	amt, err := invoice.AmountFromString("1,000,000")
	require.NoError(t, err)
	rec, err := f.svc.Pay(f.ctx, "inv-1", invoice.PayRequest{Amount: amt})
	require.NoError(t, err, "no upper bound")
	assert.Equal(t, fee.StatusPaid, rec.Invoice.Status)
}

func TestService_Pay(t *testing.T) {
	f := setup(t)

	rec, err := f.svc.Pay(f.ctx, "inv-1", invoice.PayRequest{Amount: decimal.NewFromInt(1500)})
	require.NoError(t, err)
	assert.Equal(t, fee.StatusPartial, rec.Invoice.Status)
	assert.Equal(t, "3000", rec.Invoice.RemainingBalance.String())

	// a retried attempt with the same key is not applied twice
	req := invoice.PayRequest{Amount: decimal.NewFromInt(3000), IdempotencyKey: "attempt-1"}
	rec, err = f.svc.Pay(f.ctx, "inv-1", req)
	require.NoError(t, err)
	assert.Equal(t, fee.StatusPaid, rec.Invoice.Status)

	rec, err = f.svc.Pay(f.ctx, "inv-1", req)
	require.NoError(t, err)
	assert.Equal(t, "4500", rec.Invoice.PaidAmount.String())

	_, err = f.svc.Pay(f.ctx, " ", invoice.PayRequest{Amount: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestService_Pay_InProgress(t *testing.T) {
	f := setup(t)
	f.repo.entered = make(chan struct{})
	f.repo.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Pay(f.ctx, "inv-1", invoice.PayRequest{Amount: decimal.NewFromInt(100)})
		done <- err
	}()
	<-f.repo.entered

	_, err := f.svc.Pay(f.ctx, "inv-1", invoice.PayRequest{Amount: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, invoice.ErrPaymentInProgress)

	close(f.repo.release)
	require.NoError(t, <-done)

	// released once the first attempt is done
	f.repo.entered = nil
	_, err = f.svc.Pay(f.ctx, "inv-1", invoice.PayRequest{Amount: decimal.NewFromInt(100)})
	assert.NoError(t, err)
}

func TestService_PayBalance(t *testing.T) {
	f := setup(t)

	_, err := f.svc.PayBalance(f.ctx, invoice.BalancePayment{StudentID: "S-001"})
	assert.True(t, core.IsValidationError(err))

	_, err = f.svc.PayBalance(f.ctx, invoice.BalancePayment{StudentID: "", Amount: decimal.NewFromInt(10)})
	assert.Error(t, err)

	rec, err := f.svc.PayBalance(f.ctx, invoice.BalancePayment{StudentID: "S-001", Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Message)
}

func TestService_List(t *testing.T) {
	f := setup(t)

	list, err := f.svc.List(f.ctx, invoice.Filter{Status: "unPaid", ClassName: "5"})
	require.NoError(t, err)
	require.Len(t, list.Invoices, 1)
	assert.False(t, list.HasActivePermission)

	list, err = f.svc.List(f.ctx, invoice.Filter{Search: "sara"})
	require.NoError(t, err)
	assert.Empty(t, list.Invoices)

	_, err = f.svc.List(context.Background(), invoice.Filter{})
	assert.True(t, core.IsUnauthorized(err))
}

func TestService_Generate(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Generate(f.ctx, invoice.GenerateRequest{StudentID: "S-002"})
	assert.Error(t, err, "fee month is required")

	inv, err := f.svc.Generate(f.ctx, invoice.GenerateRequest{
		StudentID: "S-002",
		FeeMonth:  "2025-02",
		Breakdown: fee.NewBreakdown(map[fee.Field]decimal.Decimal{
			fee.TutionFee:    decimal.NewFromInt(4000),
			fee.BooksCharges: decimal.NewFromInt(800),
			fee.LabsFee:      decimal.NewFromInt(999), // not a slip field
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, "4800", inv.TotalFee.String())
	assert.Equal(t, "Sara", inv.StudentName)
	assert.Equal(t, fee.StatusUnpaid, inv.Status)
}

func TestService_Print(t *testing.T) {
	f := setup(t)

	html, err := f.svc.Print(f.ctx, "inv-1", invoice.PrintOptions{AutoPrint: true})
	require.NoError(t, err)
	assert.Contains(t, html, "Main Campus")
	assert.Contains(t, html, "4,500")
	assert.Contains(t, html, "4,600")
	assert.Contains(t, html, "BANK COPY")

	// invoice without a student prints nothing
	f.db.AddInvoice(invoice.Invoice{ID: "orphan", StudentID: "gone", FeeMonth: "2025-01"}, fee.Breakdown{})
	html, err = f.svc.Print(f.ctx, "orphan", invoice.PrintOptions{})
	require.NoError(t, err)
	assert.Empty(t, html)

	_, err = f.svc.Print(f.ctx, "missing", invoice.PrintOptions{})
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestService_Delete(t *testing.T) {
	f := setup(t)

	err := f.svc.Delete(f.ctx, "inv-1")
	assert.ErrorIs(t, err, core.ErrForbidden, "accountant without permission")

	admin := core.ContextWithToken(context.Background(), f.db.IssueToken(inmem.DemoAdminEmail))
	require.NoError(t, f.svc.Delete(admin, "inv-1"))
	assert.True(t, errors.Is(f.svc.Delete(admin, "inv-1"), core.ErrNotFound))
}

func TestService_EmailVoucher(t *testing.T) {
	f := setup(t)

	err := f.svc.EmailVoucher(f.ctx, "inv-1", mail.Address{Address: "not-an-email"})
	assert.True(t, core.IsValidationError(err))

	require.NoError(t, f.svc.EmailVoucher(f.ctx, "inv-1", mail.Address{Name: "Khan", Address: "khan@example.com"}))
	require.Len(t, f.mails.msgs, 1)
	msg := f.mails.msgs[0]
	assert.Equal(t, "challan", msg.TemplateName)
	assert.Equal(t, "Main Campus", msg.SchoolName)
	require.True(t, msg.HasAttachments())
	assert.Equal(t, "challan-"+"INV-00001"+".html", msg.Attachments[0].Filename)
}

func TestDetails_Charges(t *testing.T) {
	d := invoice.Details{
		CurrentCharges:  fee.NewBreakdown(map[fee.Field]decimal.Decimal{fee.TutionFee: decimal.NewFromInt(4000)}),
		PreviousBalance: decimal.NewFromInt(700),
	}
	charges := d.Charges()
	assert.Equal(t, "700", charges.Get(fee.Arrears).String())
	assert.True(t, d.CurrentCharges.Get(fee.Arrears).IsZero(), "details are not modified")

	_, ok := d.VoucherInput(voucherSchool())
	assert.False(t, ok)
}

func init() {
	inmem.NowFunc = func() time.Time { return time.Date(2025, time.January, 3, 9, 0, 0, 0, time.UTC) }
}
