package report

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/student"
)

// StudentsSheet is the only worksheet of the students export.
const StudentsSheet = "Students Data"

const dateLayout = "2006-01-02 15:04"

// StudentColumns is the fixed header row of the students export.
func StudentColumns() []string {
	cols := []string{"Student ID", "Name", "Father Name", "Class", "Section", "Session"}
	for _, f := range fee.StudentFields {
		cols = append(cols, f.Label())
	}
	return append(cols,
		"Previous Balance", "Total", "Fee Paid", "Current Balance",
		"Status", "Campus", "Created At", "Updated At",
	)
}

func studentRow(s student.Student) []interface{} {
	row := []interface{}{s.ID, s.Name, s.FatherName, s.ClassName, s.Section, s.Session}
	for _, f := range fee.StudentFields {
		amt, _ := s.Fees.Get(f).Float64()
		row = append(row, amt)
	}
	prev, _ := s.PrevBal.Float64()
	total, _ := s.AllTotal.Float64()
	paid, _ := s.FeePaid.Float64()
	bal, _ := s.CurBalance.Float64()
	return append(row,
		prev, total, paid, bal,
		s.PaymentStatus().Label(), s.CampusName,
		formatTime(s.CreatedAt.IsZero(), s.CreatedAt.Format(dateLayout)),
		formatTime(s.UpdatedAt.IsZero(), s.UpdatedAt.Format(dateLayout)),
	)
}

func formatTime(zero bool, s string) string {
	if zero {
		return ""
	}
	return s
}

// ExportStudents writes an .xlsx workbook with the StudentsSheet worksheet to w.
func ExportStudents(w io.Writer, students []student.Student) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), StudentsSheet); err != nil {
		return errors.Wrap(err, "report.SetSheetName")
	}

	if err := setRow(f, 1, toRow(StudentColumns())); err != nil {
		return err
	}
	for i, s := range students {
		if err := setRow(f, i+2, studentRow(s)); err != nil {
			return err
		}
	}

	if err := f.SetPanes(StudentsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return errors.Wrap(err, "report.SetPanes")
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "report.WriteTo")
	}
	return nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrap(err, "report.CoordinatesToCellName")
	}
	if err := f.SetSheetRow(StudentsSheet, cell, &values); err != nil {
		return errors.Wrap(err, "report.SetSheetRow")
	}
	return nil
}

func toRow(cols []string) []interface{} {
	row := make([]interface{}, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}

type (
	Repository interface {
		QueryStudentReport(ctx context.Context) ([]student.Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Students(ctx context.Context) ([]student.Student, error) {
	return svc.repo.QueryStudentReport(ctx)
}

// ExportStudents fetches the student report and writes it as a workbook to w.
func (svc *Service) ExportStudents(ctx context.Context, w io.Writer) error {
	students, err := svc.Students(ctx)
	if err != nil {
		return err
	}
	return ExportStudents(w, students)
}
