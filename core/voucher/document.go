package voucher

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/trezcool/challan/core/fee"
)

const defaultPerPage = 3

type (
	School struct {
		Name    string
		Address string
		Phone   string
		LogoURL string
	}

	Student struct {
		ID         string
		Name       string
		FatherName string
		ClassName  string
		Section    string
		Campus     string
	}

	InvoiceInfo struct {
		Number   string
		FeeMonth string
	}

	// Input is everything needed to print the challan of one student for one billing month.
	Input struct {
		School  School
		Student Student
		Invoice InvoiceInfo
		Charges fee.Breakdown
		History []fee.MonthlyPayment
	}

	Options struct {
		Copies    []CopyType // all copies when empty
		DueDay    int        // SingleDueDay when 0
		PerPage   int        // 3 when 0
		AutoPrint bool
		Now       time.Time // time.Now() when zero
	}

	ChargeLine struct {
		Label  string
		Amount decimal.Decimal
	}

	Voucher struct {
		Copy               CopyType
		School             School
		Student            Student
		Invoice            InvoiceInfo
		FeeMonth           time.Time
		IssueDate          time.Time
		DueDate            time.Time
		History            []HistoryRow
		Charges            []ChargeLine
		LateFeeFine        decimal.Decimal
		TotalWithinDueDate decimal.Decimal
		TotalAfterDueDate  decimal.Decimal
		AmountInWords      string
		QRCode             template.URL
	}

	// Slot is one third of a printed page; a nil Voucher is an empty placeholder.
	Slot struct {
		Voucher *Voucher
	}

	Page struct {
		Number int
		Slots  []Slot
		Last   bool
	}

	Document struct {
		Title     string
		PrintedAt time.Time
		AutoPrint bool
		Pages     []Page
	}
)

func (in Input) isEmpty() bool {
	return in.Student.ID == "" && in.Student.Name == ""
}

func (s Slot) IsPlaceholder() bool { return s.Voucher == nil }

// Vouchers returns the real vouchers of the document in print order.
func (doc Document) Vouchers() []Voucher {
	var out []Voucher
	for _, p := range doc.Pages {
		for _, s := range p.Slots {
			if s.Voucher != nil {
				out = append(out, *s.Voucher)
			}
		}
	}
	return out
}

// Build lays out one voucher per input and copy type.
// Inputs without a student are skipped; a Document without pages renders to an empty string.
func Build(inputs []Input, opts Options) Document {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	copies := opts.Copies
	if len(copies) == 0 {
		copies = AllCopies
	}

	vouchers := make([]Voucher, 0, len(inputs)*len(copies))
	for _, in := range inputs {
		if in.isEmpty() {
			continue
		}
		base := newVoucher(in, opts)
		for _, ct := range copies {
			v := base
			v.Copy = ct
			if ct != CopyBank {
				v.QRCode = ""
			}
			vouchers = append(vouchers, v)
		}
	}

	doc := Document{
		PrintedAt: opts.Now,
		AutoPrint: opts.AutoPrint,
		Pages:     Paginate(vouchers, opts.PerPage),
	}
	if len(vouchers) > 0 {
		doc.Title = fmt.Sprintf("Fee Challan - %s", vouchers[0].Student.Name)
		if len(inputs) > 1 {
			doc.Title = fmt.Sprintf("Fee Challans - %d students", len(vouchers)/len(copies))
		}
	}
	return doc
}

// Paginate groups vouchers into pages of exactly perPage slots, padding the last page
// with placeholders. The real vouchers keep their input order.
func Paginate(vouchers []Voucher, perPage int) []Page {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	n := (len(vouchers) + perPage - 1) / perPage
	pages := make([]Page, 0, n)
	for i := 0; i < n; i++ {
		page := Page{Number: i + 1, Slots: make([]Slot, perPage), Last: i == n-1}
		for j := 0; j < perPage; j++ {
			if k := i*perPage + j; k < len(vouchers) {
				v := vouchers[k]
				page.Slots[j] = Slot{Voucher: &v}
			}
		}
		pages = append(pages, page)
	}
	return pages
}

func newVoucher(in Input, opts Options) Voucher {
	feeMonth, ok := fee.ParseFeeMonth(in.Invoice.FeeMonth)
	if !ok {
		feeMonth = firstOfMonth(opts.Now)
	}
	issue, due := DueDates(feeMonth, opts.DueDay)
	within := fee.TotalWithinDueDate(in.Charges)

	v := Voucher{
		School:             in.School,
		Student:            in.Student,
		Invoice:            in.Invoice,
		FeeMonth:           feeMonth,
		IssueDate:          issue,
		DueDate:            due,
		History:            BuildHistoryRows(in.History, opts.Now),
		Charges:            chargeLines(in.Charges),
		LateFeeFine:        in.Charges.Get(fee.LateFeeFine),
		TotalWithinDueDate: within,
		TotalAfterDueDate:  fee.TotalAfterDueDate(in.Charges),
		AmountInWords:      fee.AmountInWords(within),
	}
	if v.Invoice.FeeMonth == "" {
		v.Invoice.FeeMonth = MonthLabel(feeMonth)
	}
	v.QRCode = qrDataURL(v)
	return v
}

func chargeLines(charges fee.Breakdown) []ChargeLine {
	lines := make([]ChargeLine, 0, len(fee.ChargeFields))
	for _, f := range fee.ChargeFields {
		if amt := charges.Get(f); !amt.IsZero() || f == fee.TutionFee {
			lines = append(lines, ChargeLine{Label: f.Label(), Amount: amt})
		}
	}
	if amt := charges.Get(fee.OtherFee); !amt.IsZero() {
		lines = append(lines, ChargeLine{Label: fee.OtherFee.Label(), Amount: amt})
	}
	for _, l := range charges.OtherLabels() {
		lines = append(lines, ChargeLine{Label: l, Amount: charges.Others[l]})
	}
	return lines
}

// qrDataURL encodes the invoice reference for bank counters; empty if it cannot be generated.
func qrDataURL(v Voucher) template.URL {
	content := strings.Join([]string{
		"INV:" + v.Invoice.Number,
		"STD:" + v.Student.ID,
		"AMT:" + v.TotalWithinDueDate.String(),
		"DUE:" + v.DueDate.Format("2006-01-02"),
	}, "|")
	png, err := qrcode.Encode(content, qrcode.Medium, 96)
	if err != nil {
		return ""
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}
