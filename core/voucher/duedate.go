package voucher

import "time"

// Challans are issued on the 1st of the fee month and fall due on a fixed day of that month.
const (
	IssueDay     = 1
	SingleDueDay = 8
	BulkDueDay   = 15
)

// DueDates returns the issue and due dates of a fee month.
func DueDates(feeMonth time.Time, dueDay int) (issue, due time.Time) {
	if dueDay <= 0 {
		dueDay = SingleDueDay
	}
	issue = time.Date(feeMonth.Year(), feeMonth.Month(), IssueDay, 0, 0, 0, 0, time.UTC)
	due = time.Date(feeMonth.Year(), feeMonth.Month(), dueDay, 0, 0, 0, 0, time.UTC)
	return issue, due
}
