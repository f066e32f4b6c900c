package restapi

import (
	"context"

	"github.com/sendgrid/rest"

	"github.com/trezcool/challan/core/user"
)

type userRepository struct {
	c *Client
}

func NewUserRepository(c *Client) user.Repository {
	return &userRepository{c: c}
}

func (repo *userRepository) Login(ctx context.Context, creds user.Credentials) (user.Session, error) {
	var sess user.Session
	err := repo.c.send(ctx, rest.Post, "/auth/login", creds, &sess)
	return sess, err
}

func (repo *userRepository) Profile(ctx context.Context) (user.User, error) {
	var usr user.User
	err := repo.c.get(ctx, "/auth/profile", nil, &usr)
	return usr, err
}
