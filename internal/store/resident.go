package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"property-management-backend/internal/model"
)

// ResidentStore manages residents and their allotments.
type ResidentStore interface {
	List(ctx context.Context, activeOnly bool) ([]model.Resident, error)
	Get(ctx context.Context, id int64) (*model.Resident, error)
	Create(ctx context.Context, in ResidentInput) (*model.Resident, error)
	Update(ctx context.Context, id int64, in ResidentInput) (*model.Resident, error)
	Deactivate(ctx context.Context, id int64) (*model.Resident, error)
	Count(ctx context.Context) (int64, error)
	Filter(ctx context.Context, f ResidentFilter) ([]model.Resident, error)

	Allot(ctx context.Context, residentID, addressID int64, floorID *int64) (*Allotment, error)
	Remove(ctx context.Context, residentID, addressID int64) error
	ByAddress(ctx context.Context, addressID int64) ([]model.Resident, error)
	ByFloor(ctx context.Context, floorID int64) ([]model.Resident, error)
	Allotments(ctx context.Context, f AllotmentFilter) ([]AllotmentRow, error)
}

// ResidentInput carries the editable profile of a resident.
type ResidentInput struct {
	Name             string     `json:"name"`
	ContactNumber    string     `json:"contact_number"`
	Email            string     `json:"email"`
	EmergencyContact string     `json:"emergency_contact"`
	IDProofNumber    string     `json:"id_proof_number"`
	MoveInDate       *time.Time `json:"move_in_date"`
}

func (in ResidentInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "must not be empty")
	}
	return nil
}

func (in ResidentInput) apply(r *model.Resident) {
	r.Name = strings.TrimSpace(in.Name)
	r.ContactNumber = in.ContactNumber
	r.Email = in.Email
	r.EmergencyContact = in.EmergencyContact
	r.IDProofNumber = in.IDProofNumber
	r.MoveInDate = in.MoveInDate
}

// ResidentFilter matches active residents. Every non-empty field must match
// (case-insensitive substring); Address matches an allotted address number or block.
type ResidentFilter struct {
	Name          string
	ContactNumber string
	Address       string
}

type residentStore struct {
	base
}

func (s *residentStore) List(ctx context.Context, activeOnly bool) ([]model.Resident, error) {
	q := s.db.WithContext(ctx).Order("id")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var residents []model.Resident
	if err := q.Find(&residents).Error; err != nil {
		return nil, wrap("list residents", err)
	}
	return residents, nil
}

// Get returns a resident with its addresses and floor, active or not.
func (s *residentStore) Get(ctx context.Context, id int64) (*model.Resident, error) {
	var resident model.Resident
	err := s.db.WithContext(ctx).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("addresses.id") }).
		Preload("Floor").
		First(&resident, id).Error
	if err != nil {
		return nil, wrap(fmt.Sprintf("get resident %d", id), err)
	}
	return &resident, nil
}

func (s *residentStore) Create(ctx context.Context, in ResidentInput) (*model.Resident, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	resident := model.Resident{IsActive: true}
	in.apply(&resident)
	if err := s.db.WithContext(ctx).Create(&resident).Error; err != nil {
		return nil, wrap("create resident", err)
	}
	return &resident, nil
}

func (s *residentStore) Update(ctx context.Context, id int64, in ResidentInput) (*model.Resident, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var resident model.Resident
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&resident, id).Error; err != nil {
			return wrap(fmt.Sprintf("get resident %d", id), err)
		}
		in.apply(&resident)
		return wrap("update resident", tx.Save(&resident).Error)
	})
	if err != nil {
		return nil, err
	}
	return &resident, nil
}

// Deactivate soft-deletes a resident. Allotments are kept for history.
func (s *residentStore) Deactivate(ctx context.Context, id int64) (*model.Resident, error) {
	var resident model.Resident
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&resident, id).Error; err != nil {
			return wrap(fmt.Sprintf("get resident %d", id), err)
		}
		resident.IsActive = false
		return wrap("deactivate resident", tx.Model(&resident).Update("is_active", false).Error)
	})
	if err != nil {
		return nil, err
	}
	return &resident, nil
}

func (s *residentStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.Resident{}).
		Where("is_active = ?", true).
		Count(&count).Error; err != nil {
		return 0, wrap("count residents", err)
	}
	return count, nil
}

func (s *residentStore) Filter(ctx context.Context, f ResidentFilter) ([]model.Resident, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&model.Resident{}).Where("residents.is_active = ?", true)

	if f.Name != "" {
		q = q.Where(`LOWER(residents.name) LIKE ? ESCAPE '\'`, likePattern(f.Name))
	}
	if f.ContactNumber != "" {
		q = q.Where(`LOWER(residents.contact_number) LIKE ? ESCAPE '\'`, likePattern(f.ContactNumber))
	}
	if f.Address != "" {
		p := likePattern(f.Address)
		allotted := db.Table("address_resident").
			Select("address_resident.resident_id").
			Joins("JOIN addresses ON addresses.id = address_resident.address_id").
			Where(`LOWER(addresses.number) LIKE ? ESCAPE '\' OR LOWER(addresses.block) LIKE ? ESCAPE '\'`, p, p)
		q = q.Where("residents.id IN (?)", allotted)
	}

	var residents []model.Resident
	if err := q.Order("residents.id").Find(&residents).Error; err != nil {
		return nil, wrap("filter residents", err)
	}
	return residents, nil
}

// ByAddress lists the active residents allotted to an address.
func (s *residentStore) ByAddress(ctx context.Context, addressID int64) ([]model.Resident, error) {
	var residents []model.Resident
	if err := s.db.WithContext(ctx).
		Joins("JOIN address_resident ON address_resident.resident_id = residents.id").
		Where("address_resident.address_id = ? AND residents.is_active = ?", addressID, true).
		Order("residents.id").
		Find(&residents).Error; err != nil {
		return nil, wrap("residents by address", err)
	}
	return residents, nil
}

// ByFloor lists the active residents whose floor is floorID.
func (s *residentStore) ByFloor(ctx context.Context, floorID int64) ([]model.Resident, error) {
	var residents []model.Resident
	if err := s.db.WithContext(ctx).
		Where("floor_id = ? AND is_active = ?", floorID, true).
		Order("id").
		Find(&residents).Error; err != nil {
		return nil, wrap("residents by floor", err)
	}
	return residents, nil
}
