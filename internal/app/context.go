// Package app ties the stores, the authenticator and the login state of one
// operator together.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"property-management-backend/config"
	"property-management-backend/internal/auth"
	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

var (
	// ErrNotAuthenticated is returned when no session is active.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when the current user lacks a permission.
	ErrForbidden = errors.New("permission denied")
)

// Context is the explicit replacement for process-wide login state.
type Context struct {
	Store  store.Store
	Auth   *auth.Authenticator
	Config *config.Config
	Logger *zap.Logger

	now func() time.Time

	mu      sync.RWMutex
	session *auth.Session
}

// New builds a Context over s. The session TTL comes from cfg.
func New(cfg *config.Config, s store.Store, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{
		Store:  s,
		Auth:   auth.NewAuthenticator(s.Users(), cfg.Auth.SessionTTL, logger),
		Config: cfg,
		Logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Login replaces the current session on success. A failed login leaves the
// previous session untouched.
func (c *Context) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	sess, _, err := c.Auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
	c.Logger.Info("logged in", zap.String("username", username), zap.Time("expires_at", sess.ExpiresAt))
	return sess, nil
}

// Logout clears the session.
func (c *Context) Logout() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

// Session returns the current session if it is still active.
func (c *Context) Session() (*auth.Session, bool) {
	c.mu.RLock()
	sess := c.session
	c.mu.RUnlock()
	if !sess.IsActive(c.now()) {
		return nil, false
	}
	return sess, true
}

// CurrentUser loads the user of the active session.
func (c *Context) CurrentUser(ctx context.Context) (*model.User, error) {
	sess, ok := c.Session()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	user, err := c.Store.Users().Get(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

// Require returns the current user if it holds capability on module.
func (c *Context) Require(ctx context.Context, module string, capability model.Capability) (*model.User, error) {
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.HasPermission(module, capability) {
		return nil, fmt.Errorf("%w: %s on %s", ErrForbidden, capability, module)
	}
	return user, nil
}
