package restapi

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/challan/core/student"
)

type studentRepository struct {
	c *Client
}

func NewStudentRepository(c *Client) student.Repository {
	return &studentRepository{c: c}
}

func (repo *studentRepository) QueryStudents(ctx context.Context) ([]student.Student, error) {
	var students []student.Student
	err := repo.c.get(ctx, "/students", nil, &students)
	return students, err
}

func (repo *studentRepository) QueryStudentsByClass(ctx context.Context, className string) ([]student.Student, error) {
	var students []student.Student
	err := repo.c.get(ctx, "/global/students"+segment(className), nil, &students)
	return students, err
}

func (repo *studentRepository) CreateStudent(ctx context.Context, ns student.NewStudent) (student.Student, error) {
	var s student.Student
	err := repo.c.send(ctx, rest.Post, "/students/create", ns, &s)
	return s, err
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, id string, ns student.NewStudent) (student.Student, error) {
	var s student.Student
	err := repo.c.send(ctx, rest.Put, "/students"+segment(id), ns, &s)
	return s, err
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	return repo.c.send(ctx, rest.Delete, "/students"+segment(id), nil, nil)
}

func (repo *studentRepository) UploadFeeCSV(ctx context.Context, filename string, r io.Reader) (student.UploadResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return student.UploadResult{}, errors.Wrap(err, "reading fee csv")
	}
	form, err := multipartFile("file", filename, content)
	if err != nil {
		return student.UploadResult{}, err
	}
	var res student.UploadResult
	err = repo.c.send(ctx, rest.Post, "/global/upload-fee-csv", form, &res)
	return res, err
}
