package fee

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyPayment is one month of a student's payment history.
type MonthlyPayment struct {
	FeeMonth   string          `json:"feeMonth"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	PaidAt     time.Time       `json:"paidAt"`
}

// Date is the date used to order history records: the payment date,
// or the first day of the fee month when the payment date is unknown.
func (p MonthlyPayment) Date() time.Time {
	if !p.PaidAt.IsZero() {
		return p.PaidAt
	}
	if m, ok := ParseFeeMonth(p.FeeMonth); ok {
		return m
	}
	return time.Time{}
}

var feeMonthLayouts = []string{
	"2006-01",
	"January 2006", // month names match case-insensitively ("JAN-2025")
	"January-2006",
	"Jan 2006",
	"Jan-2006",
	"01-2006",
	"01/2006",
	"2006-01-02",
	time.RFC3339,
}

// ParseFeeMonth reads the billing month in any of the formats the backend uses
// and returns the first day of that month.
func ParseFeeMonth(s string) (time.Time, bool) {
	for _, layout := range feeMonthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
