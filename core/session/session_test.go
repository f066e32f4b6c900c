package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/challan/core/campus"
	"github.com/trezcool/challan/core/notify"
	"github.com/trezcool/challan/core/session"
	"github.com/trezcool/challan/core/user"
	"github.com/trezcool/challan/storage/inmem"
	sessionstore "github.com/trezcool/challan/storage/session"
)

type fixture struct {
	db      *inmem.DB
	storage *sessionstore.MemoryStorage
	notices *notify.Queue
	store   *session.Store
}

func setup(t *testing.T, users user.Repository) fixture {
	t.Helper()
	db := inmem.Open()
	inmem.Seed(db)
	if users == nil {
		users = inmem.NewUserRepository(db)
	}
	storage := sessionstore.NewMemoryStorage()
	notices := notify.NewQueue()
	store := session.NewStore(
		storage,
		user.NewService(users),
		campus.NewService(inmem.NewCampusRepository(db)),
		notices,
		nil,
	)
	return fixture{db: db, storage: storage, notices: notices, store: store}
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestStore_Init(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing stored", func(t *testing.T) {
		f := setup(t, nil)
		assert.Equal(t, session.PhaseNew, f.store.Phase())
		require.NoError(t, f.store.Init(ctx))
		assert.Equal(t, session.PhaseAnonymous, f.store.Phase())
		assert.Zero(t, f.notices.Len())
	})

	t.Run("valid token", func(t *testing.T) {
		f := setup(t, nil)
		token := f.db.IssueToken(inmem.DemoAdminEmail)
		require.NoError(t, f.storage.Save(session.State{Token: token, User: user.User{ID: "stale", Name: "Old name"}}))

		require.NoError(t, f.store.Init(ctx))
		assert.Equal(t, session.PhaseReady, f.store.Phase())
		assert.True(t, f.store.IsAuthenticated())
		assert.Equal(t, "u-admin", f.store.User().ID, "profile refreshed from the backend")
		assert.Equal(t, "Main Campus", f.store.Campus().Name)

		st, err := f.storage.Load()
		require.NoError(t, err)
		assert.Equal(t, "u-admin", st.User.ID)
	})

	t.Run("rejected token", func(t *testing.T) {
		f := setup(t, nil)
		require.NoError(t, f.storage.Save(session.State{Token: "revoked", User: user.User{ID: "u-admin"}}))

		require.NoError(t, f.store.Init(ctx))
		assert.Equal(t, session.PhaseAnonymous, f.store.Phase())
		assert.Empty(t, f.store.Token())
		_, err := f.storage.Load()
		assert.ErrorIs(t, err, session.ErrNoSession)

		notices := f.notices.Drain()
		require.Len(t, notices, 1)
		assert.Equal(t, notify.LevelError, notices[0].Level)
		assert.Equal(t, session.ExpiredMessage, notices[0].Message)
	})

	t.Run("expired token is not verified", func(t *testing.T) {
		repo := &profileStub{}
		f := setup(t, repo)
		require.NoError(t, f.storage.Save(session.State{Token: signed(t, time.Now().Add(-time.Hour))}))

		require.NoError(t, f.store.Init(ctx))
		assert.Equal(t, session.PhaseAnonymous, f.store.Phase())
		assert.Zero(t, repo.calls)
	})

	t.Run("backend unreachable keeps the stored profile", func(t *testing.T) {
		repo := &profileStub{err: errors.New("connection refused")}
		f := setup(t, repo)
		stored := user.User{ID: "u-accountant", Name: "Accountant", Role: user.RoleAccountant}
		require.NoError(t, f.storage.Save(session.State{Token: signed(t, time.Now().Add(time.Hour)), User: stored}))

		require.NoError(t, f.store.Init(ctx))
		assert.Equal(t, session.PhaseReady, f.store.Phase())
		assert.Equal(t, stored, f.store.User())
		assert.Equal(t, 1, repo.calls)
	})
}

func TestStore_LoginLogout(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	require.NoError(t, f.store.Init(ctx))

	_, err := f.store.Login(ctx, user.Credentials{Email: inmem.DemoAccountantEmail, Password: "wrong"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	assert.Equal(t, session.PhaseAnonymous, f.store.Phase())

	usr, err := f.store.Login(ctx, user.Credentials{Email: " Accountant@Challan.local ", Password: inmem.DemoPassword})
	require.NoError(t, err)
	assert.Equal(t, user.RoleAccountant, usr.Role)
	assert.Equal(t, session.PhaseReady, f.store.Phase())
	assert.NotEmpty(t, f.store.Token())

	st, err := f.storage.Load()
	require.NoError(t, err)
	assert.Equal(t, f.store.Token(), st.Token)

	require.NoError(t, f.store.Logout())
	assert.Equal(t, session.PhaseAnonymous, f.store.Phase())
	_, err = f.storage.Load()
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Zero(t, f.notices.Len(), "logging out is not an expiry")
}

func TestStore_HandleUnauthorized(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	_, err := f.store.Login(ctx, user.Credentials{Email: inmem.DemoAdminEmail, Password: inmem.DemoPassword})
	require.NoError(t, err)

	f.store.HandleUnauthorized()
	assert.Equal(t, session.PhaseAnonymous, f.store.Phase())
	assert.Equal(t, 1, f.notices.Len())
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, session.TokenExpired(signed(t, now.Add(-time.Minute)), now))
	assert.False(t, session.TokenExpired(signed(t, now.Add(time.Minute)), now))
	assert.False(t, session.TokenExpired("opaque-token", now))
}

type profileStub struct {
	calls int
	err   error
}

func (s *profileStub) Login(context.Context, user.Credentials) (user.Session, error) {
	return user.Session{}, user.ErrInvalidCredentials
}

func (s *profileStub) Profile(context.Context) (user.User, error) {
	s.calls++
	return user.User{}, s.err
}
