package store

import (
	"context"

	"gorm.io/gorm/clause"

	"property-management-backend/internal/model"
)

// SubscriptionStore manages web push subscriptions.
type SubscriptionStore interface {
	Put(ctx context.Context, sub model.PushSubscription) error
	Delete(ctx context.Context, endpoint string) error
	ListByUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)
	ListForModule(ctx context.Context, module string) ([]model.PushSubscription, error)
}

type subscriptionStore struct {
	base
}

// Put creates a subscription or refreshes its keys and owner.
func (s *subscriptionStore) Put(ctx context.Context, sub model.PushSubscription) error {
	if sub.Endpoint == "" {
		return invalid("endpoint", "must not be empty")
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = s.now()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_id"}),
	}).Create(&sub).Error
	return wrap("put subscription", err)
}

func (s *subscriptionStore) Delete(ctx context.Context, endpoint string) error {
	return wrap("delete subscription", s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error)
}

func (s *subscriptionStore) ListByUser(ctx context.Context, userID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, wrap("list subscriptions", err)
	}
	return subs, nil
}

// ListForModule returns the subscriptions of active users allowed to view module.
func (s *subscriptionStore) ListForModule(ctx context.Context, module string) ([]model.PushSubscription, error) {
	db := s.db.WithContext(ctx)
	viewers := db.Table("user_permission").
		Select("user_permission.user_id").
		Joins("JOIN permissions ON permissions.id = user_permission.permission_id").
		Joins("JOIN users ON users.id = user_permission.user_id").
		Where("permissions.module = ? AND permissions.can_view = ? AND users.is_active = ?", module, true, true)

	var subs []model.PushSubscription
	if err := db.Where("user_id IN (?)", viewers).Find(&subs).Error; err != nil {
		return nil, wrap("list subscriptions for module", err)
	}
	return subs, nil
}
