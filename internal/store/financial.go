package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"property-management-backend/internal/model"
)

// FinancialStore manages charges and the dues raised against them.
type FinancialStore interface {
	ListCharges(ctx context.Context, activeOnly bool) ([]model.Charge, error)
	GetCharge(ctx context.Context, id int64) (*model.Charge, error)
	CreateCharge(ctx context.Context, in ChargeInput) (*model.Charge, error)
	UpdateCharge(ctx context.Context, id int64, in ChargeInput) (*model.Charge, error)
	DeleteCharge(ctx context.Context, id int64) (*model.Charge, error)

	ListRecords(ctx context.Context, f RecordFilter) ([]model.FinancialRecord, error)
	GetRecord(ctx context.Context, id int64) (*model.FinancialRecord, error)
	CreateRecord(ctx context.Context, in RecordInput) (*model.FinancialRecord, error)
	UpdateRecord(ctx context.Context, id int64, in RecordInput) (*model.FinancialRecord, error)
	DeleteRecord(ctx context.Context, id int64) (*model.FinancialRecord, error)
	MarkPaid(ctx context.Context, id int64, at time.Time) (*model.FinancialRecord, error)
	RecentRecords(ctx context.Context, limit int) ([]model.FinancialRecord, error)
	TotalPendingDues(ctx context.Context, now time.Time) (float64, error)
}

// ChargeInput carries the editable fields of a charge.
type ChargeInput struct {
	Name        string           `json:"name"`
	Amount      float64          `json:"amount"`
	ChargeType  model.ChargeType `json:"charge_type"`
	Description string           `json:"description"`
	IsActive    bool             `json:"is_active"`
}

func (in ChargeInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if in.Amount < 0 {
		return invalid("amount", "must not be negative")
	}
	if !in.ChargeType.Valid() {
		return invalid("charge_type", "unknown charge type %q", in.ChargeType)
	}
	return nil
}

func (in ChargeInput) apply(c *model.Charge) {
	c.Name = strings.TrimSpace(in.Name)
	c.Amount = in.Amount
	c.ChargeType = in.ChargeType
	c.Description = in.Description
	c.IsActive = in.IsActive
}

// RecordInput carries the editable fields of a financial record. PaidDate is
// dropped unless IsPaid is set; a paid record without a date is stamped now.
type RecordInput struct {
	ResidentID int64      `json:"resident_id"`
	AddressID  int64      `json:"address_id"`
	ChargeID   int64      `json:"charge_id"`
	Amount     float64    `json:"amount"`
	DueDate    time.Time  `json:"due_date"`
	PaidDate   *time.Time `json:"paid_date"`
	IsPaid     bool       `json:"is_paid"`
	Notes      string     `json:"notes"`
}

// RecordFilter narrows ListRecords. Zero fields are ignored.
type RecordFilter struct {
	ResidentID int64
	AddressID  int64
	UnpaidOnly bool
}

type financialStore struct {
	base
}

func (s *financialStore) ListCharges(ctx context.Context, activeOnly bool) ([]model.Charge, error) {
	q := s.db.WithContext(ctx).Order("id")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var charges []model.Charge
	if err := q.Find(&charges).Error; err != nil {
		return nil, wrap("list charges", err)
	}
	return charges, nil
}

func (s *financialStore) GetCharge(ctx context.Context, id int64) (*model.Charge, error) {
	var charge model.Charge
	if err := s.db.WithContext(ctx).First(&charge, id).Error; err != nil {
		return nil, wrap(fmt.Sprintf("get charge %d", id), err)
	}
	return &charge, nil
}

func (s *financialStore) CreateCharge(ctx context.Context, in ChargeInput) (*model.Charge, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var charge model.Charge
	in.apply(&charge)
	if err := s.db.WithContext(ctx).Create(&charge).Error; err != nil {
		return nil, wrap("create charge", err)
	}
	return &charge, nil
}

func (s *financialStore) UpdateCharge(ctx context.Context, id int64, in ChargeInput) (*model.Charge, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var charge model.Charge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&charge, id).Error; err != nil {
			return wrap(fmt.Sprintf("get charge %d", id), err)
		}
		in.apply(&charge)
		return wrap("update charge", tx.Save(&charge).Error)
	})
	if err != nil {
		return nil, err
	}
	return &charge, nil
}

// DeleteCharge removes a charge that no financial record refers to.
func (s *financialStore) DeleteCharge(ctx context.Context, id int64) (*model.Charge, error) {
	var charge model.Charge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&charge, id).Error; err != nil {
			return wrap(fmt.Sprintf("get charge %d", id), err)
		}
		var refs int64
		if err := tx.Model(&model.FinancialRecord{}).Where("charge_id = ?", id).Count(&refs).Error; err != nil {
			return wrap("count financial records", err)
		}
		if refs > 0 {
			return invalid("charge", "referenced by %d financial records", refs)
		}
		return wrap("delete charge", tx.Delete(&charge).Error)
	})
	if err != nil {
		return nil, err
	}
	return &charge, nil
}

func (s *financialStore) ListRecords(ctx context.Context, f RecordFilter) ([]model.FinancialRecord, error) {
	q := s.db.WithContext(ctx).Preload("Charge")
	if f.ResidentID != 0 {
		q = q.Where("resident_id = ?", f.ResidentID)
	}
	if f.AddressID != 0 {
		q = q.Where("address_id = ?", f.AddressID)
	}
	if f.UnpaidOnly {
		q = q.Where("is_paid = ?", false)
	}
	var records []model.FinancialRecord
	if err := q.Order("due_date DESC, id").Find(&records).Error; err != nil {
		return nil, wrap("list financial records", err)
	}
	return records, nil
}

func (s *financialStore) GetRecord(ctx context.Context, id int64) (*model.FinancialRecord, error) {
	var record model.FinancialRecord
	err := s.db.WithContext(ctx).
		Preload("Resident").Preload("Address").Preload("Charge").
		First(&record, id).Error
	if err != nil {
		return nil, wrap(fmt.Sprintf("get financial record %d", id), err)
	}
	return &record, nil
}

func (s *financialStore) CreateRecord(ctx context.Context, in RecordInput) (*model.FinancialRecord, error) {
	var record model.FinancialRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkRecord(tx, in); err != nil {
			return err
		}
		s.applyRecord(in, &record)
		return wrap("create financial record", tx.Create(&record).Error)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *financialStore) UpdateRecord(ctx context.Context, id int64, in RecordInput) (*model.FinancialRecord, error) {
	var record model.FinancialRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, id).Error; err != nil {
			return wrap(fmt.Sprintf("get financial record %d", id), err)
		}
		if err := s.checkRecord(tx, in); err != nil {
			return err
		}
		s.applyRecord(in, &record)
		return wrap("update financial record", tx.Save(&record).Error)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *financialStore) DeleteRecord(ctx context.Context, id int64) (*model.FinancialRecord, error) {
	var record model.FinancialRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, id).Error; err != nil {
			return wrap(fmt.Sprintf("get financial record %d", id), err)
		}
		return wrap("delete financial record", tx.Delete(&record).Error)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *financialStore) MarkPaid(ctx context.Context, id int64, at time.Time) (*model.FinancialRecord, error) {
	var record model.FinancialRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, id).Error; err != nil {
			return wrap(fmt.Sprintf("get financial record %d", id), err)
		}
		paid := at.UTC()
		record.IsPaid = true
		record.PaidDate = &paid
		return wrap("mark paid", tx.Model(&record).Updates(map[string]any{
			"is_paid":   true,
			"paid_date": paid,
		}).Error)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *financialStore) RecentRecords(ctx context.Context, limit int) ([]model.FinancialRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	var records []model.FinancialRecord
	if err := s.db.WithContext(ctx).
		Preload("Resident").Preload("Charge").
		Order("due_date DESC, id DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, wrap("recent financial records", err)
	}
	return records, nil
}

// TotalPendingDues sums unpaid amounts that are not yet overdue at now.
func (s *financialStore) TotalPendingDues(ctx context.Context, now time.Time) (float64, error) {
	var total float64
	if err := s.db.WithContext(ctx).
		Model(&model.FinancialRecord{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("is_paid = ? AND due_date >= ?", false, now.UTC()).
		Scan(&total).Error; err != nil {
		return 0, wrap("total pending dues", err)
	}
	return total, nil
}

// checkRecord validates amounts and that every referenced row exists.
func (s *financialStore) checkRecord(tx *gorm.DB, in RecordInput) error {
	if in.Amount < 0 {
		return invalid("amount", "must not be negative")
	}
	if in.DueDate.IsZero() {
		return invalid("due_date", "must be set")
	}
	refs := []struct {
		field string
		model any
		id    int64
	}{
		{"resident_id", &model.Resident{}, in.ResidentID},
		{"address_id", &model.Address{}, in.AddressID},
		{"charge_id", &model.Charge{}, in.ChargeID},
	}
	for _, r := range refs {
		var n int64
		if err := tx.Model(r.model).Where("id = ?", r.id).Count(&n).Error; err != nil {
			return wrap("check "+r.field, err)
		}
		if n == 0 {
			return invalid(r.field, "%d does not exist", r.id)
		}
	}
	return nil
}

func (s *financialStore) applyRecord(in RecordInput, r *model.FinancialRecord) {
	r.ResidentID = in.ResidentID
	r.AddressID = in.AddressID
	r.ChargeID = in.ChargeID
	r.Amount = in.Amount
	r.DueDate = in.DueDate.UTC()
	r.IsPaid = in.IsPaid
	r.Notes = in.Notes
	r.PaidDate = nil
	if in.IsPaid {
		paid := s.now()
		if in.PaidDate != nil {
			paid = in.PaidDate.UTC()
		}
		r.PaidDate = &paid
	}
}
