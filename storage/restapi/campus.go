package restapi

import (
	"context"

	"github.com/trezcool/challan/core/campus"
)

type campusRepository struct {
	c *Client
}

func NewCampusRepository(c *Client) campus.Repository {
	return &campusRepository{c: c}
}

func (repo *campusRepository) GetCampus(ctx context.Context, id string) (campus.Campus, error) {
	var cmp campus.Campus
	err := repo.c.get(ctx, "/campus"+segment(id), nil, &cmp)
	return cmp, err
}
