// Package session owns the client-side authentication lifecycle:
// adopting a persisted token on startup, silently refreshing it, and
// clearing everything on any unrecoverable auth failure.
package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Ref-Hub/refhub-cli/internal/api"
	apperrors "github.com/Ref-Hub/refhub-cli/internal/errors"
	"github.com/Ref-Hub/refhub-cli/internal/log"
	"github.com/Ref-Hub/refhub-cli/internal/tokenstore"
)

// State is the session lifecycle state
type State int

const (
	// StateUninitialized means Initialize has not run yet
	StateUninitialized State = iota
	// StateInitializing means Initialize is reading or refreshing
	StateInitializing
	// StateAuthenticated means a valid token and user are present
	StateAuthenticated
	// StateUnauthenticated means no valid session exists
	StateUnauthenticated
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Manager drives the session state machine. One instance exists per
// running client; it is injected, never ambient.
type Manager struct {
	store  tokenstore.Store
	client *api.Client
	logger *log.Logger

	mu    sync.Mutex
	state State
	user  *api.User

	// Concurrent refresh triggers coalesce into one exchange.
	refreshGroup singleflight.Group
}

// NewManager creates a session manager and wires it into the client
// as its 401 refresher.
func NewManager(store tokenstore.Store, client *api.Client, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	m := &Manager{
		store:  store,
		client: client,
		logger: logger,
		state:  StateUninitialized,
	}
	client.SetRefresher(m)
	return m
}

// Initialize establishes the session from persisted state. It fails
// closed: any unexpected condition clears all state and lands in
// StateUnauthenticated. It never fails open.
func (m *Manager) Initialize(ctx context.Context) State {
	m.setState(StateInitializing, nil)

	token := m.store.Token()
	refreshToken := m.store.RefreshToken()
	user := m.store.StoredUser()

	if token == "" && refreshToken == "" {
		m.setState(StateUnauthenticated, nil)
		return StateUnauthenticated
	}

	// An unexpired token with a cached user is adopted without any
	// network call. An expired token must go through refresh first.
	if token != "" && user != nil && Fresh(token, time.Now()) {
		m.setState(StateAuthenticated, user)
		m.logger.DebugContext(ctx, "session restored from stored token", "email", user.Email)
		return StateAuthenticated
	}

	if refreshToken != "" {
		if _, err := m.RefreshAccessToken(ctx); err != nil {
			m.logger.WithError(err).Debug("silent refresh failed during initialization")
			m.Invalidate()
			return StateUnauthenticated
		}
		return StateAuthenticated
	}

	m.Invalidate()
	return StateUnauthenticated
}

// Login authenticates, persists the token pair, and derives the user
// snapshot from the access token's identity claims.
func (m *Manager) Login(ctx context.Context, email, password string, remember bool) (*api.User, error) {
	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, apperrors.NewLoginFailedError(err)
	}

	if err := m.store.SetToken(resp.AccessToken); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileWriteFailed, "failed to persist access token", err)
	}
	if resp.RefreshToken != "" {
		if err := m.store.SetRefreshToken(resp.RefreshToken); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileWriteFailed, "failed to persist refresh token", err)
		}
	}
	if err := m.store.SetRememberMe(remember); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileWriteFailed, "failed to persist remember-me flag", err)
	}

	user, err := userFromToken(resp.AccessToken)
	if err != nil || user.Email == "" {
		// Opaque tokens still produce a usable session.
		user = &api.User{Email: email}
	}
	if err := m.store.SetStoredUser(user); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileWriteFailed, "failed to persist user snapshot", err)
	}

	m.setState(StateAuthenticated, user)
	m.logger.InfoContext(ctx, "logged in", "email", user.Email)
	return user, nil
}

// Logout clears the session locally. Server-side invalidation
// semantics are opaque to the client.
func (m *Manager) Logout(ctx context.Context) error {
	m.logger.InfoContext(ctx, "logged out")
	m.Invalidate()
	return nil
}

// RefreshAccessToken exchanges the refresh token for a new access
// token. Single-flighted: concurrent 401s share one in-flight
// exchange instead of issuing parallel refresh calls. A failed
// exchange is terminal and clears the session.
func (m *Manager) RefreshAccessToken(ctx context.Context) (string, error) {
	v, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		refreshToken := m.store.RefreshToken()
		if refreshToken == "" {
			m.Invalidate()
			return nil, apperrors.NewNotAuthenticatedError()
		}

		resp, err := m.client.RefreshToken(ctx, refreshToken)
		if err != nil {
			m.Invalidate()
			return nil, err
		}

		if err := m.store.SetToken(resp.AccessToken); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileWriteFailed, "failed to persist access token", err)
		}
		// The backend rotates the refresh token only sometimes.
		if resp.RefreshToken != "" {
			if err := m.store.SetRefreshToken(resp.RefreshToken); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrCodeFileWriteFailed, "failed to persist refresh token", err)
			}
		}

		user := m.store.StoredUser()
		if user == nil {
			if u, uerr := userFromToken(resp.AccessToken); uerr == nil {
				user = u
				_ = m.store.SetStoredUser(u)
			}
		}
		m.setState(StateAuthenticated, user)

		return resp.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate clears all persisted and in-memory session state
func (m *Manager) Invalidate() {
	if err := m.store.ClearAll(); err != nil {
		m.logger.WithError(err).Warn("failed to clear stored credentials")
	}
	m.setState(StateUnauthenticated, nil)
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns the session user, or nil when unauthenticated
func (m *Manager) CurrentUser() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

func (m *Manager) setState(state State, user *api.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.user = user
}

// Compile-time verification that Manager is the client's refresher
var _ api.Refresher = (*Manager)(nil)
