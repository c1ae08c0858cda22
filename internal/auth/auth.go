package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

// ErrInvalidCredentials covers unknown users, inactive users and wrong
// passwords alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserLookup is the part of the user store needed to log in.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// Authenticator verifies credentials and opens sessions.
type Authenticator struct {
	users  UserLookup
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewAuthenticator returns an Authenticator issuing sessions of the given TTL.
func NewAuthenticator(users UserLookup, ttl time.Duration, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Authenticator{
		users:  users,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// TTL returns the session lifetime.
func (a *Authenticator) TTL() time.Duration { return a.ttl }

// Login checks the credentials and returns a new session with the user.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, *model.User, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		a.logger.Info("login failed", zap.String("username", username), zap.String("reason", "unknown user"))
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		a.logger.Info("login failed", zap.String("username", username), zap.String("reason", "inactive"))
		return nil, nil, ErrInvalidCredentials
	}

	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		a.logger.Warn("stored password hash unreadable", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, nil, ErrInvalidCredentials
	}
	if !ok {
		a.logger.Info("login failed", zap.String("username", username), zap.String("reason", "password"))
		return nil, nil, ErrInvalidCredentials
	}

	return NewSession(user.ID, user.Username, a.now(), a.ttl), user, nil
}
