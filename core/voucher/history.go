package voucher

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core/fee"
)

// HistoryMonths is the number of rows of the payment history table.
const HistoryMonths = 11

type HistoryRow struct {
	Month     time.Time
	Paid      decimal.Decimal
	Synthetic bool
}

// Label formats the row month, e.g. "DEC-2024".
func (r HistoryRow) Label() string {
	return MonthLabel(r.Month)
}

func MonthLabel(t time.Time) string {
	return strings.ToUpper(t.Format("Jan-2006"))
}

// BuildHistoryRows always returns HistoryMonths rows.
// The newest records (up to HistoryMonths) come first; the remaining slots are filled with
// zero-paid months walking backwards from `now`: slot i is the (i+1)th month before now.
func BuildHistoryRows(records []fee.MonthlyPayment, now time.Time) []HistoryRow {
	sorted := make([]fee.MonthlyPayment, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date().After(sorted[j].Date())
	})
	if len(sorted) > HistoryMonths {
		sorted = sorted[:HistoryMonths]
	}

	rows := make([]HistoryRow, 0, HistoryMonths)
	for _, rec := range sorted {
		month, ok := fee.ParseFeeMonth(rec.FeeMonth)
		if !ok {
			month = firstOfMonth(rec.Date())
		}
		rows = append(rows, HistoryRow{Month: month, Paid: rec.PaidAmount})
	}

	current := firstOfMonth(now)
	for i := len(rows); i < HistoryMonths; i++ {
		rows = append(rows, HistoryRow{
			Month:     current.AddDate(0, -(i + 1), 0),
			Paid:      decimal.Zero,
			Synthetic: true,
		})
	}
	return rows
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
