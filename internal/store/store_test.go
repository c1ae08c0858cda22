package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return gormDB, mock
}

func TestAddressStore_CountByCategory(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT category, COUNT(*) AS total FROM "addresses" GROUP BY`)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "total"}).
			AddRow("R", 2).
			AddRow("A", 1))

	got, err := s.Addresses().CountByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Residential": 2, "Administrative": 1}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressStore_CountByBlockStorageError(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT block, COUNT(*) AS total FROM "addresses" GROUP BY`)).
		WillReturnError(errors.New("connection reset"))

	_, err := s.Addresses().CountByBlock(context.Background())
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "count addresses by block", se.Op)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressStore_GetNotFound(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "addresses" WHERE "addresses"."id" = $1`)).
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Addresses().Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressStore_UpdateShopCount(t *testing.T) {
	testCases := []struct {
		name             string
		floorID          int64
		shopCount        int
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedErr      func(t *testing.T, err error)
	}{
		{
			name:      "Shop floor is updated",
			floorID:   3,
			shopCount: 4,
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "floors" WHERE "floors"."id" = $1`)).
					WithArgs(3, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "address_id", "floor_number", "is_shop", "shop_count"}).
						AddRow(3, 1, 1, true, 1))
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "floors" SET "shop_count"=$1 WHERE "id" = $2`)).
					WithArgs(4, 3).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:      "Non-shop floor is rejected",
			floorID:   4,
			shopCount: 2,
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "floors" WHERE "floors"."id" = $1`)).
					WithArgs(4, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "address_id", "floor_number", "is_shop", "shop_count"}).
						AddRow(4, 1, 2, false, 0))
				mock.ExpectRollback()
			},
			expectedErr: func(t *testing.T, err error) {
				assert.True(t, IsValidation(err))
			},
		},
		{
			name:             "Negative count never reaches the database",
			floorID:          5,
			shopCount:        -1,
			mockExpectations: func(mock sqlmock.Sqlmock) {},
			expectedErr: func(t *testing.T, err error) {
				assert.True(t, IsValidation(err))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB, nil)
			tc.mockExpectations(mock)

			floor, err := s.Addresses().UpdateShopCount(context.Background(), tc.floorID, tc.shopCount)
			if tc.expectedErr != nil {
				require.Error(t, err)
				tc.expectedErr(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.shopCount, floor.ShopCount)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFinancialStore_TotalPendingDues(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB, nil)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(amount), 0) FROM "financial_records" WHERE is_paid = $1 AND due_date >= $2`)).
		WithArgs(false, now).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1250.5))

	total, err := s.Finance().TotalPendingDues(context.Background(), now)
	require.NoError(t, err)
	assert.InDelta(t, 1250.5, total, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintStore_PendingCount(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "complaints" WHERE status IN ($1,$2)`)).
		WithArgs("PENDING", "IN_PROGRESS").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := s.Complaints().PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWrap(t *testing.T) {
	testCases := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "Nil stays nil",
			err:  nil,
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "Record not found",
			err:  gorm.ErrRecordNotFound,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotFound)
			},
		},
		{
			name: "Duplicate key",
			err:  gorm.ErrDuplicatedKey,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrConflict)
			},
		},
		{
			name: "Untranslated sqlite unique violation",
			err:  errors.New("UNIQUE constraint failed: users.username"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrConflict)
			},
		},
		{
			name: "Not allotted stays a not found kind",
			err:  ErrNotAllotted,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotAllotted)
				assert.ErrorIs(t, err, ErrNotFound)
			},
		},
		{
			name: "Anything else is storage",
			err:  errors.New("disk I/O error"),
			check: func(t *testing.T, err error) {
				var se *StorageError
				assert.ErrorAs(t, err, &se)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, wrap("op", tc.err))
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%asha%", likePattern(" Asha "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_OFF"))
}
