package inmem

import (
	"context"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

// AddUser registers a staff account that can log in with password.
func (db *DB) AddUser(usr user.User, password string) user.User {
	db.auth.Lock()
	defer db.auth.Unlock()
	if usr.ID == "" {
		usr.ID = newID()
	}
	usr.Email = core.CleanString(usr.Email, true)
	db.auth.accounts[usr.Email] = &account{user: usr, password: password}
	return usr
}

// IssueToken returns a valid token for the account of email, bypassing the password.
func (db *DB) IssueToken(email string) string {
	db.auth.Lock()
	defer db.auth.Unlock()
	token := newID()
	db.auth.tokens[token] = core.CleanString(email, true)
	return token
}

// RevokeTokens invalidates every issued token.
func (db *DB) RevokeTokens() {
	db.auth.Lock()
	db.auth.tokens = make(map[string]string)
	db.auth.Unlock()
}

func (repo *userRepository) Login(_ context.Context, creds user.Credentials) (user.Session, error) {
	repo.db.auth.Lock()
	defer repo.db.auth.Unlock()

	acc, ok := repo.db.auth.accounts[creds.Email]
	if !ok || acc.password != creds.Password {
		return user.Session{}, user.ErrInvalidCredentials
	}
	token := newID()
	repo.db.auth.tokens[token] = creds.Email
	return user.Session{Token: token, User: acc.user}, nil
}

func (repo *userRepository) Profile(ctx context.Context) (user.User, error) {
	return repo.db.caller(ctx)
}
