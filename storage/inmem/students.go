package inmem

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/student"
)

type studentRepository struct {
	db *studentTable
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

// AddStudent stores s as is (aggregates included).
func (db *DB) AddStudent(s student.Student) student.Student {
	db.student.Lock()
	defer db.student.Unlock()
	return db.student.put(s)
}

func (t *studentTable) put(s student.Student) student.Student {
	if s.ID == "" {
		s.ID = newID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = NowFunc().UTC()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	if _, ok := t.table[s.ID]; !ok {
		t.order = append(t.order, s.ID)
	}
	t.table[s.ID] = &s
	return s
}

func (t *studentTable) query(keep func(student.Student) bool) []student.Student {
	out := make([]student.Student, 0, len(t.order))
	for _, id := range t.order {
		if s, ok := t.table[id]; ok && (keep == nil || keep(*s)) {
			out = append(out, *s)
		}
	}
	return out
}

func (repo *studentRepository) QueryStudents(_ context.Context) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.query(nil), nil
}

func (repo *studentRepository) QueryStudentsByClass(_ context.Context, className string) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.query(func(s student.Student) bool {
		return strings.EqualFold(s.ClassName, className)
	}), nil
}

func fromForm(s student.Student, ns student.NewStudent) student.Student {
	s.Name = ns.Name
	s.FatherName = ns.FatherName
	s.ClassName = ns.ClassName
	s.Section = ns.Section
	s.Session = ns.Session
	s.CampusID = ns.CampusID
	s.Fees = ns.Fees
	s.AllTotal = ns.AllTotal
	s.CurBalance = ns.AllTotal.Sub(s.FeePaid)
	s.Status = statusOf(s.AllTotal, s.FeePaid)
	return s
}

func (repo *studentRepository) CreateStudent(_ context.Context, ns student.NewStudent) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.table[ns.ID]; ok && ns.ID != "" {
		return student.Student{}, core.NewValidationError(nil, core.FieldError{Field: "studentId", Error: "a student with this id already exists"})
	}
	return repo.db.put(fromForm(student.Student{ID: ns.ID}, ns)), nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, id string, ns student.NewStudent) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	s, ok := repo.db.table[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	updated := fromForm(*s, ns)
	updated.UpdatedAt = NowFunc().UTC()
	return repo.db.put(updated), nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.table[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

// UploadFeeCSV upserts students from a CSV whose header names the JSON keys of a student
// (studentId, studentName, fatherName, className, section, session and fee fields).
func (repo *studentRepository) UploadFeeCSV(_ context.Context, _ string, r io.Reader) (student.UploadResult, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return student.UploadResult{}, core.NewValidationError(errors.Wrap(err, "reading csv"), core.FieldError{Field: "file", Error: "the file is not a valid CSV"})
	}
	if len(records) < 2 {
		return student.UploadResult{}, core.NewValidationError(student.ErrEmptyUpload, core.FieldError{Field: "file", Error: student.ErrEmptyUpload.Error()})
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	var res student.UploadResult
	for n, rec := range records[1:] {
		line := n + 2
		ns, err := studentFromRecord(header, rec)
		if err == nil {
			err = ns.Validate()
		}
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		if s, ok := repo.db.table[ns.ID]; ok && ns.ID != "" {
			updated := fromForm(*s, ns)
			updated.UpdatedAt = NowFunc().UTC()
			repo.db.put(updated)
			res.Updated++
		} else {
			repo.db.put(fromForm(student.Student{ID: ns.ID}, ns))
			res.Inserted++
		}
	}
	return res, nil
}

func studentFromRecord(header, rec []string) (student.NewStudent, error) {
	var ns student.NewStudent
	for i, key := range header {
		if i >= len(rec) {
			break
		}
		val := strings.TrimSpace(rec[i])
		switch key {
		case "studentId":
			ns.ID = val
		case "studentName":
			ns.Name = val
		case "fatherName":
			ns.FatherName = val
		case "className":
			ns.ClassName = val
		case "section":
			ns.Section = val
		case "session":
			ns.Session = val
		case "campusId":
			ns.CampusID = val
		default:
			if val == "" {
				continue
			}
			amt, err := decimal.NewFromString(strings.ReplaceAll(val, ",", ""))
			if err != nil {
				return ns, fmt.Errorf("%s: %q is not an amount", key, val)
			}
			ns.Fees.Set(fee.Field(key), amt)
		}
	}
	return ns, nil
}
