package student

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/trezcool/challan/core"
)

var (
	// errors
	ErrNotFound      = fmt.Errorf("student %w", core.ErrNotFound)
	ErrEmptyUpload   = errors.New("the uploaded file is empty")
	ErrNotCSV        = errors.New("only .csv files are accepted")
	errClassRequired = errors.New("class is required")
)

type (
	Repository interface {
		QueryStudents(ctx context.Context) ([]Student, error)
		QueryStudentsByClass(ctx context.Context, className string) ([]Student, error)
		CreateStudent(ctx context.Context, ns NewStudent) (Student, error)
		UpdateStudent(ctx context.Context, id string, ns NewStudent) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
		UploadFeeCSV(ctx context.Context, filename string, r io.Reader) (UploadResult, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List fetches every student and applies the filter locally.
func (svc *Service) List(ctx context.Context, filter Filter) ([]Student, error) {
	filter.Clean()
	var (
		students []Student
		err      error
	)
	if filter.ClassName != "" {
		students, err = svc.repo.QueryStudentsByClass(ctx, filter.ClassName)
	} else {
		students, err = svc.repo.QueryStudents(ctx)
	}
	if err != nil {
		return nil, err
	}
	return filter.Apply(students), nil
}

func (svc *Service) ListByClass(ctx context.Context, className string) ([]Student, error) {
	className = core.CleanString(className)
	if className == "" {
		return nil, core.NewValidationError(errClassRequired, core.FieldError{Field: "className", Error: errClassRequired.Error()})
	}
	return svc.repo.QueryStudentsByClass(ctx, className)
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(ctx, ns)
}

func (svc *Service) Update(ctx context.Context, id string, ns NewStudent) (Student, error) {
	if core.CleanString(id) == "" {
		return Student{}, ErrNotFound
	}
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	ns.ID = id
	return svc.repo.UpdateStudent(ctx, id, ns)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if core.CleanString(id) == "" {
		return ErrNotFound
	}
	return svc.repo.DeleteStudent(ctx, id)
}

// UploadFeeCSV forwards a fee CSV to the backend, which parses and imports it.
func (svc *Service) UploadFeeCSV(ctx context.Context, filename string, size int64, r io.Reader) (UploadResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return UploadResult{}, core.NewValidationError(ErrNotCSV, core.FieldError{Field: "file", Error: ErrNotCSV.Error()})
	}
	if size == 0 {
		return UploadResult{}, core.NewValidationError(ErrEmptyUpload, core.FieldError{Field: "file", Error: ErrEmptyUpload.Error()})
	}
	return svc.repo.UploadFeeCSV(ctx, filepath.Base(filename), r)
}
