package user

import (
	"context"
	"errors"

	"github.com/trezcool/challan/core"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownRole        = errors.New("this account has no dashboard access")
)

type (
	Repository interface {
		Login(ctx context.Context, creds Credentials) (Session, error)
		Profile(ctx context.Context) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Login validates creds before anything is sent, then only accepts staff accounts.
func (svc *Service) Login(ctx context.Context, creds Credentials) (Session, error) {
	if err := creds.Validate(); err != nil {
		return Session{}, err
	}
	sess, err := svc.repo.Login(ctx, creds)
	if err != nil {
		return Session{}, err
	}
	if sess.Token == "" {
		return Session{}, ErrInvalidCredentials
	}
	if !sess.User.HasRole(AllRoles...) {
		return Session{}, core.NewValidationError(ErrUnknownRole)
	}
	return sess, nil
}

// Profile fetches the profile of the token carried by ctx.
func (svc *Service) Profile(ctx context.Context) (User, error) {
	return svc.repo.Profile(ctx)
}
