package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/student"
)

func TestExportStudents(t *testing.T) {
	students := []student.Student{
		{
			ID: "S-1", Name: "Ali", FatherName: "Khan", ClassName: "5",
			AllTotal: decimal.NewFromInt(4500), FeePaid: decimal.NewFromInt(4500),
			Status:    fee.StatusPaid,
			CreatedAt: time.Date(2025, time.January, 2, 9, 30, 0, 0, time.UTC),
			Fees:      fee.NewBreakdown(map[fee.Field]decimal.Decimal{fee.TutionFee: decimal.NewFromInt(4000)}),
		},
		{ID: "S-2", Name: "Sara", FatherName: "Ahmed", ClassName: "6"},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportStudents(&buf, students))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{StudentsSheet}, f.GetSheetList())

	rows, err := f.GetRows(StudentsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, StudentColumns(), rows[0])
	assert.Equal(t, "Ali", rows[1][1])
	assert.Equal(t, "4000", rows[1][6])

	cols := StudentColumns()
	assert.Equal(t, "Paid", rows[1][len(cols)-4])
	assert.Equal(t, "2025-01-02 09:30", rows[1][len(cols)-2])
	assert.Equal(t, "Sara", rows[2][1])
}

func TestExportStudents_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportStudents(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err := f.GetRows(StudentsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
