package store

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store groups the repositories of every aggregate.
type Store interface {
	Addresses() AddressStore
	Residents() ResidentStore
	Finance() FinancialStore
	Complaints() ComplaintStore
	Users() UserStore
	Subscriptions() SubscriptionStore
	Dashboard(ctx context.Context, now time.Time) (*DashboardSummary, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time

	addresses     *addressStore
	residents     *residentStore
	finance       *financialStore
	complaints    *complaintStore
	users         *userStore
	subscriptions *subscriptionStore
}

// base carries what every repository needs.
type base struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewGormStore creates a new GORM-backed store. A nil logger disables logging.
func NewGormStore(db *gorm.DB, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := base{db: db, logger: logger, now: func() time.Time { return time.Now().UTC() }}
	return &gormStore{
		db:            db,
		logger:        logger,
		now:           b.now,
		addresses:     &addressStore{base: b},
		residents:     &residentStore{base: b},
		finance:       &financialStore{base: b},
		complaints:    &complaintStore{base: b},
		users:         &userStore{base: b},
		subscriptions: &subscriptionStore{base: b},
	}
}

func (s *gormStore) Addresses() AddressStore         { return s.addresses }
func (s *gormStore) Residents() ResidentStore         { return s.residents }
func (s *gormStore) Finance() FinancialStore          { return s.finance }
func (s *gormStore) Complaints() ComplaintStore       { return s.complaints }
func (s *gormStore) Users() UserStore                 { return s.users }
func (s *gormStore) Subscriptions() SubscriptionStore { return s.subscriptions }
func (s *gormStore) DB() *gorm.DB                     { return s.db }
