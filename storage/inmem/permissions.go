package inmem

import (
	"context"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/permission"
)

type permissionRepository struct {
	db *DB
}

func NewPermissionRepository(db *DB) permission.Repository {
	return &permissionRepository{db: db}
}

func (repo *permissionRepository) CreateRequest(ctx context.Context, nr permission.NewRequest) (permission.Request, error) {
	usr, err := repo.db.caller(ctx)
	if err != nil {
		return permission.Request{}, err
	}

	repo.db.permission.Lock()
	defer repo.db.permission.Unlock()
	r := permission.Request{
		ID:                newID(),
		RequestedBy:       usr.ID,
		RequestedByName:   usr.Name,
		Reason:            nr.Reason,
		RequestedDuration: nr.RequestedDuration,
		Status:            permission.StatusPending,
		CreatedAt:         NowFunc().UTC(),
	}
	repo.db.permission.table[r.ID] = &r
	repo.db.permission.order = append(repo.db.permission.order, r.ID)
	return r, nil
}

func (repo *permissionRepository) query(keep func(permission.Request) bool) []permission.Request {
	out := make([]permission.Request, 0, len(repo.db.permission.order))
	for i := len(repo.db.permission.order) - 1; i >= 0; i-- { // newest first
		r := *repo.db.permission.table[repo.db.permission.order[i]]
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (repo *permissionRepository) QueryRequests(ctx context.Context, status permission.Status) ([]permission.Request, error) {
	usr, err := repo.db.caller(ctx)
	if err != nil {
		return nil, err
	}
	if !usr.IsAdmin() {
		return nil, core.ErrForbidden
	}

	repo.db.permission.RLock()
	defer repo.db.permission.RUnlock()
	return repo.query(func(r permission.Request) bool {
		return status == "" || r.Status == status
	}), nil
}

func (repo *permissionRepository) QueryMyRequests(ctx context.Context) (permission.Mine, error) {
	usr, err := repo.db.caller(ctx)
	if err != nil {
		return permission.Mine{}, err
	}

	repo.db.permission.RLock()
	defer repo.db.permission.RUnlock()
	mine := permission.Mine{Requests: repo.query(func(r permission.Request) bool { return r.RequestedBy == usr.ID })}
	_, mine.HasActivePermission = mine.Active(NowFunc())
	return mine, nil
}

func (repo *permissionRepository) decide(ctx context.Context, id string, apply func(r permission.Request, by string) (permission.Request, error)) (permission.Request, error) {
	usr, err := repo.db.caller(ctx)
	if err != nil {
		return permission.Request{}, err
	}
	if !usr.IsAdmin() {
		return permission.Request{}, core.ErrForbidden
	}

	repo.db.permission.Lock()
	defer repo.db.permission.Unlock()
	r, ok := repo.db.permission.table[id]
	if !ok {
		return permission.Request{}, permission.ErrNotFound
	}
	updated, err := apply(*r, usr.ID)
	if err != nil {
		return permission.Request{}, core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
	}
	*r = updated
	return updated, nil
}

func (repo *permissionRepository) ApproveRequest(ctx context.Context, id string, minutes int) (permission.Request, error) {
	return repo.decide(ctx, id, func(r permission.Request, by string) (permission.Request, error) {
		return r.Approve(by, minutes, NowFunc())
	})
}

func (repo *permissionRepository) RejectRequest(ctx context.Context, id, reason string) (permission.Request, error) {
	return repo.decide(ctx, id, func(r permission.Request, by string) (permission.Request, error) {
		return r.Reject(by, reason, NowFunc())
	})
}
