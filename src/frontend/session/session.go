// Package session holds the identity of the logged-in user, derived from the
// bearer token issued by the backend.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/storage"
)

// Session is the current identity.
type Session struct {
	Subject   string
	Name      string
	Roles     model.RoleSet
	Token     string
	ExpiresAt time.Time // zero when the token has no expiry
}

// Authorizer attaches the bearer token to outgoing API calls.
type Authorizer interface {
	SetBearer(token string)
	ClearBearer()
}

// TokenIssuer exchanges credentials for a token.
type TokenIssuer interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Store owns the current Session. A new Store reports IsLoading until Restore
// has run.
type Store struct {
	store storage.Store
	auth  Authorizer
	log   logrus.FieldLogger
	now   func() time.Time

	mu      sync.RWMutex
	current *Session
	loading bool
}

func NewStore(store storage.Store, auth Authorizer, log logrus.FieldLogger) *Store {
	return &Store{
		store:   store,
		auth:    auth,
		log:     log,
		now:     time.Now,
		loading: true,
	}
}

// Restore loads the persisted token, if any. A token that does not decode is
// discarded; the outcome is the same as not being logged in.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	token, ok, err := s.store.Get(ctx, storage.KeyToken)
	if err != nil {
		s.log.WithField("error", err).Warn("could not read persisted session token")
		s.clear()
		return
	}
	if !ok {
		s.clear()
		return
	}

	sess, err := Decode(token, s.now())
	if err != nil {
		s.log.WithField("error", err).Warn("discarding persisted session token")
		if derr := s.store.Delete(ctx, storage.KeyToken); derr != nil {
			s.log.WithField("error", derr).Warn("could not delete persisted session token")
		}
		s.clear()
		return
	}
	s.set(sess)
	s.log.WithField("subject", sess.Subject).Info("session restored")
}

// Login installs token as the current session. A malformed token yields a
// *DecodeError and leaves the store unchanged.
func (s *Store) Login(ctx context.Context, token string) error {
	sess, err := Decode(token, s.now())
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, storage.KeyToken, token); err != nil {
		return errors.Wrap(err, "persist session token")
	}
	s.set(sess)
	s.log.WithField("subject", sess.Subject).Info("user logged in")
	return nil
}

// SignIn obtains a token from issuer and logs in with it. Issuer errors are
// returned unchanged.
func (s *Store) SignIn(ctx context.Context, issuer TokenIssuer, email, password string) error {
	token, err := issuer.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.Login(ctx, token)
}

// Logout always drops the in-memory session; the error reports a failure to
// remove the persisted token.
func (s *Store) Logout(ctx context.Context) error {
	s.clear()
	if err := s.store.Delete(ctx, storage.KeyToken); err != nil {
		return errors.Wrap(err, "delete session token")
	}
	s.log.Info("user logged out")
	return nil
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Current returns a copy of the session.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Roles is empty when nobody is logged in.
func (s *Store) Roles() model.RoleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return model.NewRoleSet()
	}
	return model.NewRoleSet(s.current.Roles.Slice()...)
}

func (s *Store) set(sess *Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	s.auth.SetBearer(sess.Token)
}

func (s *Store) clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.auth.ClearBearer()
}
