package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"property-management-backend/config"
	"property-management-backend/internal/auth"
	"property-management-backend/internal/db"
	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))

	s := store.NewGormStore(gormDB, nil)
	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)
	_, err = db.Seed(context.Background(), s, hash, nil)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return New(cfg, s, nil)
}

func TestContext_LoginLogout(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)

	_, ok := c.Session()
	assert.False(t, ok)
	_, err := c.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	sess, err := c.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, sess.ExpiresAt.Sub(sess.IssuedAt))

	user, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	c.Logout()
	_, ok = c.Session()
	assert.False(t, ok)
}

func TestContext_SessionExpires(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)

	sess, err := c.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	c.now = func() time.Time { return sess.ExpiresAt.Add(time.Second) }
	_, ok := c.Session()
	assert.False(t, ok)
	_, err = c.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestContext_Require(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)

	hash, err := auth.HashPassword("clerk")
	require.NoError(t, err)
	clerk, err := c.Store.Users().Create(ctx, store.UserInput{Username: "clerk", IsActive: true}, hash)
	require.NoError(t, err)
	_, err = c.Store.Users().SetPermissions(ctx, clerk.ID, []string{"view_dashboard"})
	require.NoError(t, err)

	_, err = c.Login(ctx, "clerk", "clerk")
	require.NoError(t, err)

	_, err = c.Require(ctx, model.ModuleDashboard, model.CanView)
	assert.NoError(t, err)
	_, err = c.Require(ctx, model.ModuleAddresses, model.CanAdd)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = c.Store.Users().Deactivate(ctx, clerk.ID)
	require.NoError(t, err)
	_, err = c.Require(ctx, model.ModuleDashboard, model.CanView)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
