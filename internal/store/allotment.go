package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"property-management-backend/internal/model"
)

// Allotment reports the outcome of Allot.
type Allotment struct {
	ResidentID int64 `json:"resident_id"`
	AddressID  int64 `json:"address_id"`
	// AddressAttached is false when the resident already held the address.
	AddressAttached bool `json:"address_attached"`
	// FloorID is the resident's floor after the call.
	FloorID       *int64 `json:"floor_id,omitempty"`
	FloorAssigned bool   `json:"floor_assigned"`
	// FloorRejected is set when a floor was requested that does not belong
	// to the address. The address is attached regardless.
	FloorRejected bool `json:"floor_rejected"`
}

// AllotmentRow is one resident placed on a floor of an address.
type AllotmentRow struct {
	ResidentID    int64       `json:"resident_id"`
	ResidentName  string      `json:"resident_name"`
	AddressID     int64       `json:"address_id"`
	AddressNumber string      `json:"address_number"`
	Block         model.Block `json:"block"`
	FloorID       int64       `json:"floor_id"`
	FloorNumber   int         `json:"floor_number"`
}

// AllotmentFilter narrows Allotments. Zero fields are ignored.
type AllotmentFilter struct {
	AddressNumber string
	Block         model.Block
}

// Allot attaches an address to a resident and, when floorID is given and the
// floor belongs to that address, moves the resident onto it. A resident holds
// at most one floor across all of its addresses.
func (s *residentStore) Allot(ctx context.Context, residentID, addressID int64, floorID *int64) (*Allotment, error) {
	result := &Allotment{ResidentID: residentID, AddressID: addressID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resident model.Resident
		if err := tx.Preload("Addresses").First(&resident, residentID).Error; err != nil {
			return wrap(fmt.Sprintf("get resident %d", residentID), err)
		}
		var address model.Address
		if err := tx.First(&address, addressID).Error; err != nil {
			return wrap(fmt.Sprintf("get address %d", addressID), err)
		}

		if !resident.HasAddress(addressID) {
			if err := tx.Model(&resident).Association("Addresses").Append(&address); err != nil {
				return wrap("attach address", err)
			}
			result.AddressAttached = true
		}
		result.FloorID = resident.FloorID

		if floorID == nil {
			return nil
		}

		var floor model.Floor
		err := tx.Where("id = ? AND address_id = ?", *floorID, addressID).First(&floor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.FloorRejected = true
			s.logger.Info("floor rejected for allotment",
				zap.Int64("resident_id", residentID),
				zap.Int64("address_id", addressID),
				zap.Int64("floor_id", *floorID))
			return nil
		}
		if err != nil {
			return wrap("get floor", err)
		}

		if err := tx.Model(&model.Resident{}).
			Where("id = ?", residentID).
			Update("floor_id", floor.ID).Error; err != nil {
			return wrap("assign floor", err)
		}
		result.FloorID = &floor.ID
		result.FloorAssigned = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Remove detaches an address from a resident. The resident's floor is cleared
// only when it belongs to the removed address.
func (s *residentStore) Remove(ctx context.Context, residentID, addressID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resident model.Resident
		if err := tx.Preload("Addresses").Preload("Floor").First(&resident, residentID).Error; err != nil {
			return wrap(fmt.Sprintf("get resident %d", residentID), err)
		}
		if !resident.HasAddress(addressID) {
			return ErrNotAllotted
		}

		if err := tx.Model(&resident).Association("Addresses").Delete(&model.Address{ID: addressID}); err != nil {
			return wrap("detach address", err)
		}

		if resident.Floor != nil && resident.Floor.AddressID == addressID {
			if err := tx.Model(&model.Resident{}).
				Where("id = ?", residentID).
				Update("floor_id", gorm.Expr("NULL")).Error; err != nil {
				return wrap("clear floor", err)
			}
		}
		return nil
	})
}

// Allotments lists active residents together with the floor and address they
// are placed on.
func (s *residentStore) Allotments(ctx context.Context, f AllotmentFilter) ([]AllotmentRow, error) {
	q := s.db.WithContext(ctx).
		Table("floors").
		Select("residents.id AS resident_id, residents.name AS resident_name, " +
			"addresses.id AS address_id, addresses.number AS address_number, addresses.block AS block, " +
			"floors.id AS floor_id, floors.floor_number AS floor_number").
		Joins("JOIN addresses ON floors.address_id = addresses.id").
		Joins("JOIN residents ON residents.floor_id = floors.id").
		Where("residents.is_active = ?", true)

	if f.AddressNumber != "" {
		q = q.Where(`LOWER(addresses.number) LIKE ? ESCAPE '\'`, likePattern(f.AddressNumber))
	}
	if f.Block != "" {
		q = q.Where("addresses.block = ?", f.Block)
	}

	var rows []AllotmentRow
	if err := q.Order("addresses.id, floors.floor_number, residents.id").Scan(&rows).Error; err != nil {
		return nil, wrap("list allotments", err)
	}
	return rows, nil
}
