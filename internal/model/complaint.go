package model

import "time"

// Complaint is an issue raised by a resident about an address.
type Complaint struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	ResidentID  int64           `gorm:"not null;index" json:"resident_id"`
	AddressID   int64           `gorm:"not null;index" json:"address_id"`
	Title       string          `gorm:"size:100;not null" json:"title"`
	Description string          `gorm:"size:500;not null" json:"description"`
	Status      ComplaintStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`

	// Associations
	Resident *Resident `json:"resident,omitempty"`
	Address  *Address  `json:"address,omitempty"`
}
