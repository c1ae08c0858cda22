package model

import "time"

// Resident is a person living in or using one or more addresses. Residents
// are deactivated rather than deleted.
type Resident struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"size:100;not null" json:"name"`
	ContactNumber    string     `gorm:"size:20" json:"contact_number"`
	Email            string     `gorm:"size:100" json:"email"`
	EmergencyContact string     `gorm:"size:100" json:"emergency_contact"`
	IDProofNumber    string     `gorm:"size:50" json:"id_proof_number"`
	MoveInDate       *time.Time `json:"move_in_date,omitempty"`
	IsActive         bool       `gorm:"not null;index" json:"is_active"`
	FloorID          *int64     `gorm:"index" json:"floor_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Associations
	Floor     *Floor     `gorm:"constraint:OnDelete:SET NULL" json:"floor,omitempty"`
	Addresses []*Address `gorm:"many2many:address_resident;" json:"addresses,omitempty"`
}

// HasAddress reports whether the loaded address set contains addressID.
func (r *Resident) HasAddress(addressID int64) bool {
	for _, a := range r.Addresses {
		if a.ID == addressID {
			return true
		}
	}
	return false
}
