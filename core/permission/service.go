package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/trezcool/challan/core"
)

var (
	// errors
	ErrNotFound       = fmt.Errorf("permission request %w", core.ErrNotFound)
	errReasonRequired = errors.New("a reason is required to reject a request")
)

type (
	Repository interface {
		CreateRequest(ctx context.Context, nr NewRequest) (Request, error)
		QueryRequests(ctx context.Context, status Status) ([]Request, error)
		QueryMyRequests(ctx context.Context) (Mine, error)
		ApproveRequest(ctx context.Context, id string, minutes int) (Request, error)
		RejectRequest(ctx context.Context, id, reason string) (Request, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nr NewRequest) (Request, error) {
	if err := nr.Validate(); err != nil {
		return Request{}, err
	}
	return svc.repo.CreateRequest(ctx, nr)
}

func (svc *Service) List(ctx context.Context, status Status) ([]Request, error) {
	return svc.repo.QueryRequests(ctx, status)
}

func (svc *Service) Mine(ctx context.Context) (Mine, error) {
	return svc.repo.QueryMyRequests(ctx)
}

// HasActive reports whether the caller currently holds edit rights, as told by the backend.
func (svc *Service) HasActive(ctx context.Context) (bool, error) {
	mine, err := svc.repo.QueryMyRequests(ctx)
	if err != nil {
		return false, err
	}
	return mine.HasActivePermission, nil
}

func (svc *Service) Approve(ctx context.Context, id string, d Decision) (Request, error) {
	if core.CleanString(id) == "" {
		return Request{}, ErrNotFound
	}
	if err := core.Validate.Struct(d); err != nil {
		return Request{}, err
	}
	return svc.repo.ApproveRequest(ctx, id, d.Minutes)
}

func (svc *Service) Reject(ctx context.Context, id string, d Decision) (Request, error) {
	if core.CleanString(id) == "" {
		return Request{}, ErrNotFound
	}
	if d.Reason = core.CleanString(d.Reason); d.Reason == "" {
		return Request{}, core.NewValidationError(errReasonRequired, core.FieldError{Field: "reason", Error: errReasonRequired.Error()})
	}
	return svc.repo.RejectRequest(ctx, id, d.Reason)
}
