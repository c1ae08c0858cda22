package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

type fakeUsers map[string]*model.User

func (f fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := f[username]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func newTestAuthenticator(t *testing.T, now time.Time) *Authenticator {
	t.Helper()
	hash, err := HashPassword("admin123")
	require.NoError(t, err)

	users := fakeUsers{
		"admin":   {ID: 1, Username: "admin", PasswordHash: hash, IsActive: true},
		"retired": {ID: 2, Username: "retired", PasswordHash: hash, IsActive: false},
	}
	a := NewAuthenticator(users, time.Hour, nil)
	a.now = func() time.Time { return now }
	return a
}

func TestAuthenticator_Login(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(t, now)

	testCases := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "Valid credentials", username: "admin", password: "admin123"},
		{name: "Wrong password", username: "admin", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "Unknown user", username: "ghost", password: "admin123", wantErr: ErrInvalidCredentials},
		{name: "Inactive user", username: "retired", password: "admin123", wantErr: ErrInvalidCredentials},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sess, user, err := a.Login(context.Background(), tc.username, tc.password)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, sess)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), sess.UserID)
			assert.Equal(t, "admin", user.Username)
			assert.Equal(t, now, sess.IssuedAt)
			assert.Equal(t, now.Add(time.Hour), sess.ExpiresAt)
		})
	}
}

type failingUsers struct{}

func (failingUsers) GetByUsername(context.Context, string) (*model.User, error) {
	return nil, &store.StorageError{Op: "get user", Err: errors.New("disk full")}
}

func TestAuthenticator_LoginStorageError(t *testing.T) {
	a := NewAuthenticator(failingUsers{}, 0, nil)
	_, _, err := a.Login(context.Background(), "admin", "x")

	var se *store.StorageError
	assert.ErrorAs(t, err, &se)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, DefaultSessionTTL, a.TTL())
}

func TestSession_IsActive(t *testing.T) {
	issued := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewSession(1, "admin", issued, 30*time.Minute)

	assert.True(t, s.IsActive(issued))
	assert.True(t, s.IsActive(issued.Add(29*time.Minute)))
	assert.False(t, s.IsActive(issued.Add(30*time.Minute)))
	assert.False(t, s.IsActive(issued.Add(2*time.Hour)))

	var none *Session
	assert.False(t, none.IsActive(issued))
}
