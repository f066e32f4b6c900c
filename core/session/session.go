// Package session holds the signed-in staff member and drives the session lifecycle:
// hydrate from storage, verify against the backend, then ready or anonymous.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/campus"
	"github.com/trezcool/challan/core/notify"
	"github.com/trezcool/challan/core/user"
)

type Phase int

const (
	PhaseNew Phase = iota
	PhaseHydrating
	PhaseVerifying
	PhaseReady
	PhaseAnonymous
)

func (p Phase) String() string {
	switch p {
	case PhaseNew:
		return "new"
	case PhaseHydrating:
		return "hydrating"
	case PhaseVerifying:
		return "verifying"
	case PhaseReady:
		return "ready"
	case PhaseAnonymous:
		return "anonymous"
	}
	return "unknown"
}

const ExpiredMessage = "Your session has expired, please log in again."

var (
	ErrNoSession = errors.New("no session")

	nowFunc = time.Now // mockable
)

// State is what is persisted between runs: the token and the basic profile.
type State struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

func (s State) IsZero() bool { return s.Token == "" }

// Storage persists the session State. Load returns ErrNoSession when nothing is stored.
type Storage interface {
	Load() (State, error)
	Save(s State) error
	Clear() error
}

type Store struct {
	storage  Storage
	users    *user.Service
	campuses *campus.Service
	notifier notify.Notifier
	logger   core.Logger

	mu     sync.RWMutex
	phase  Phase
	state  State
	campus campus.Campus
}

func NewStore(storage Storage, users *user.Service, campuses *campus.Service, notifier notify.Notifier, logger core.Logger) *Store {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Store{
		storage:  storage,
		users:    users,
		campuses: campuses,
		notifier: notifier,
		logger:   logger,
		phase:    PhaseNew,
	}
}

func (s *Store) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Init restores the persisted session and verifies it against the backend.
// A stored token that is expired, or rejected by the backend, leaves the store anonymous.
// When the backend cannot be reached the stored profile is kept.
func (s *Store) Init(ctx context.Context) error {
	s.setPhase(PhaseHydrating)
	st, err := s.storage.Load()
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			s.warn("session.Init: could not load the stored session", err)
		}
		s.reset()
		return nil
	}
	if st.IsZero() {
		s.reset()
		return nil
	}
	if TokenExpired(st.Token, nowFunc()) {
		s.expire()
		return nil
	}

	s.mu.Lock()
	s.state = st
	s.phase = PhaseVerifying
	s.mu.Unlock()

	usr, err := s.users.Profile(core.ContextWithToken(ctx, st.Token))
	switch {
	case core.IsUnauthorized(err):
		s.expire()
		return nil
	case err != nil:
		s.warn("session.Init: could not verify the stored session", err)
		usr = st.User
	default:
		st.User = usr
		if err := s.storage.Save(st); err != nil {
			s.warn("session.Init: could not save the session", err)
		}
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.loadCampus(ctx, usr)
	s.setPhase(PhaseReady)
	return nil
}

// Login signs in, persists the session and fetches the user's campus.
func (s *Store) Login(ctx context.Context, creds user.Credentials) (user.User, error) {
	sess, err := s.users.Login(ctx, creds)
	if err != nil {
		return user.User{}, err
	}
	st := State{Token: sess.Token, User: sess.User}
	if err := s.storage.Save(st); err != nil {
		return user.User{}, errors.Wrap(err, "saving session")
	}

	s.mu.Lock()
	s.state = st
	s.campus = campus.Campus{}
	s.mu.Unlock()
	s.loadCampus(ctx, sess.User)
	s.setPhase(PhaseReady)
	return sess.User, nil
}

// Logout forgets the session locally; the backend keeps no session to end.
func (s *Store) Logout() error {
	err := s.storage.Clear()
	s.reset()
	return err
}

// HandleUnauthorized is called when the backend rejects the token: the session is cleared
// and the user is told to log in again.
func (s *Store) HandleUnauthorized() {
	s.expire()
}

func (s *Store) expire() {
	if err := s.storage.Clear(); err != nil {
		s.warn("session: could not clear the stored session", err)
	}
	s.reset()
	s.notifier.Push(notify.Notice{Level: notify.LevelError, Message: ExpiredMessage})
}

func (s *Store) reset() {
	s.mu.Lock()
	s.state = State{}
	s.campus = campus.Campus{}
	s.phase = PhaseAnonymous
	s.mu.Unlock()
}

func (s *Store) loadCampus(ctx context.Context, usr user.User) {
	if usr.CampusID == "" || s.campuses == nil {
		return
	}
	c, err := s.campuses.Get(s.Context(ctx), usr.CampusID)
	if err != nil {
		s.warn("session: could not fetch the campus", err)
		return
	}
	s.mu.Lock()
	s.campus = c
	s.mu.Unlock()
}

func (s *Store) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, err)
	}
}

func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Store) IsAuthenticated() bool {
	return s.Phase() == PhaseReady
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *Store) User() user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User
}

func (s *Store) Campus() campus.Campus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.campus
}

// Context returns ctx carrying the session token.
func (s *Store) Context(ctx context.Context) context.Context {
	if token := s.Token(); token != "" {
		return core.ContextWithToken(ctx, token)
	}
	return ctx
}

// TokenExpired reports whether token is a JWT whose `exp` is not after now.
// Opaque tokens are never considered expired here; the backend decides.
func TokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(now)
}
