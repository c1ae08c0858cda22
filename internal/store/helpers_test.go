package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"property-management-backend/internal/model"
)

// newSQLiteStore returns a store over a private in-memory database.
func newSQLiteStore(t *testing.T) (*gormStore, *gorm.DB) {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gormDB.AutoMigrate(
		&model.Address{},
		&model.Floor{},
		&model.Resident{},
		&model.Permission{},
		&model.User{},
		&model.Charge{},
		&model.FinancialRecord{},
		&model.Complaint{},
		&model.PushSubscription{},
	))
	return NewGormStore(gormDB, nil).(*gormStore), gormDB
}

func mustAddress(t *testing.T, s Store, number string, block model.Block, floors int) *model.Address {
	t.Helper()
	a, err := s.Addresses().Create(context.Background(), AddressInput{
		Category:    model.CategoryResidential,
		Number:      number,
		Row:         "1",
		Block:       block,
		TotalFloors: floors,
	})
	require.NoError(t, err)
	return a
}

func mustFloor(t *testing.T, s Store, addressID int64, number int) *model.Floor {
	t.Helper()
	f, err := s.Addresses().AddFloor(context.Background(), addressID, FloorInput{FloorNumber: number, IsOwner: true})
	require.NoError(t, err)
	return f
}

func mustResident(t *testing.T, s Store, name string) *model.Resident {
	t.Helper()
	r, err := s.Residents().Create(context.Background(), ResidentInput{Name: name, ContactNumber: "555-0100"})
	require.NoError(t, err)
	return r
}

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
