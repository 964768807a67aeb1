package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
	"github.com/erptask/taskdeck/internal/metrics"
	"github.com/erptask/taskdeck/internal/pkg/validate"
)

// SessionState is the position of the session state machine.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticating
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Snapshot is an immutable read of the session for guards and views.
type Snapshot struct {
	State SessionState
	User  *domain.User
}

// Session owns the {unauthenticated, authenticating, authenticated} state
// machine and the credential lifecycle behind it. All transitions commit the
// credential store and the state together under one lock, so a half-written
// session (token without user, or the reverse) is never observable.
type Session struct {
	store ports.CredentialStore
	auth  ports.AuthAPI
	log   zerolog.Logger

	mu    sync.Mutex
	state SessionState
}

func NewSession(store ports.CredentialStore, auth ports.AuthAPI, log zerolog.Logger) *Session {
	return &Session{store: store, auth: auth, log: log}
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Restore probes durable storage at startup. A stored token whose exp claim
// has passed is discarded without a network call; otherwise the profile is
// re-resolved against the backend so a revoked token can't produce a stale
// authenticated state. Any failure lands on unauthenticated, never an error.
func (s *Session) Restore(ctx context.Context) Snapshot {
	s.setState(StateAuthenticating)

	cred, err := s.store.Load()
	if err != nil || cred == nil {
		if err != nil {
			s.log.Warn().Err(err).Msg("credential restore failed")
		}
		s.discard()
		return s.Current()
	}

	if tokenExpired(cred.Token, time.Now()) {
		s.log.Debug().Msg("stored token expired, discarding")
		s.discard()
		return s.Current()
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("profile resolution failed, discarding credential")
		s.discard()
		return s.Current()
	}

	s.commit(&domain.Credential{Token: cred.Token, User: *user})
	return s.Current()
}

// Login authenticates against the backend. On failure the error is returned
// and no state is mutated; on success the credential is stored atomically and
// the session becomes authenticated.
func (s *Session) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := validate.Struct(loginInput{Email: email, Password: password}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}

	prev := s.Current().State
	s.setState(StateAuthenticating)

	cred, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.setState(prev)
		return nil, err
	}

	s.commit(cred)
	s.log.Info().Str("email", email).Str("role", cred.User.Role).Msg("logged in")
	return &cred.User, nil
}

// Logout clears the credential and returns to unauthenticated. It never
// fails: a storage error is logged and the in-memory session still resets.
func (s *Session) Logout() {
	s.discard()
	s.log.Info().Msg("logged out")
}

// ForceExpire is the gateway's 401 hook: the backend rejected our token, so
// the session is cleared regardless of current state. Idempotent: calling it
// while already unauthenticated produces no observable transition.
func (s *Session) ForceExpire() {
	s.mu.Lock()
	already := s.state == StateUnauthenticated
	s.mu.Unlock()
	if already {
		return
	}
	s.discard()
	s.log.Warn().Msg("session force-expired by backend")
}

// Current returns the state plus a copy of the authenticated user, if any.
func (s *Session) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{State: s.state}
	if s.state == StateAuthenticated {
		if cred := s.store.Get(); cred != nil {
			u := cred.User
			snap.User = &u
		}
	}
	return snap
}

// HasRole is the capability predicate: fail-closed, an absent session never
// satisfies any allow-list, and an empty allow-list means "any authenticated".
func (s *Session) HasRole(allowed ...string) bool {
	snap := s.Current()
	if snap.State != StateAuthenticated || snap.User == nil {
		return false
	}
	return snap.User.HasRole(allowed...)
}

// commit stores the credential and enters authenticated as one transition.
func (s *Session) commit(cred *domain.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(cred); err != nil {
		// Durable write failed; the in-memory copy is still consistent, so
		// the session stays usable for this process.
		s.log.Warn().Err(err).Msg("credential persistence failed")
	}
	s.transition(StateAuthenticated)
}

// discard clears the credential and enters unauthenticated as one transition.
func (s *Session) discard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("credential clear failed")
	}
	s.transition(StateUnauthenticated)
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transition(state)
}

// transition must be called with mu held.
func (s *Session) transition(state SessionState) {
	if s.state == state {
		return
	}
	s.state = state
	metrics.SessionTransitionsTotal.WithLabelValues(state.String()).Inc()
}

// tokenExpired inspects the JWT exp claim without verifying the signature:
// the client has no signing key; verification is the backend's job. An
// unparseable token is treated as expired, a missing exp claim as valid.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
