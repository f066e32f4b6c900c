package restapi

import (
	"context"

	"github.com/sendgrid/rest"

	"github.com/trezcool/challan/core/permission"
)

type permissionRepository struct {
	c *Client
}

func NewPermissionRepository(c *Client) permission.Repository {
	return &permissionRepository{c: c}
}

func (repo *permissionRepository) CreateRequest(ctx context.Context, nr permission.NewRequest) (permission.Request, error) {
	var r permission.Request
	err := repo.c.send(ctx, rest.Post, "/permissions/request", nr, &r)
	return r, err
}

func (repo *permissionRepository) QueryRequests(ctx context.Context, status permission.Status) ([]permission.Request, error) {
	var query map[string]string
	if status != "" {
		query = map[string]string{"status": string(status)}
	}
	var requests []permission.Request
	err := repo.c.get(ctx, "/permissions", query, &requests)
	return requests, err
}

func (repo *permissionRepository) QueryMyRequests(ctx context.Context) (permission.Mine, error) {
	var mine permission.Mine
	err := repo.c.get(ctx, "/permissions/my", nil, &mine)
	return mine, err
}

func (repo *permissionRepository) ApproveRequest(ctx context.Context, id string, minutes int) (permission.Request, error) {
	var r permission.Request
	err := repo.c.send(ctx, rest.Put, "/permissions"+segment(id)+"/approve", permission.Decision{Minutes: minutes}, &r)
	return r, err
}

func (repo *permissionRepository) RejectRequest(ctx context.Context, id, reason string) (permission.Request, error) {
	var r permission.Request
	err := repo.c.send(ctx, rest.Put, "/permissions"+segment(id)+"/reject", permission.Decision{Reason: reason}, &r)
	return r, err
}
