package model

import "time"

// Charge is a named fee that financial records are raised against.
type Charge struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Amount      float64    `gorm:"not null" json:"amount"`
	ChargeType  ChargeType `gorm:"size:16;not null" json:"charge_type"`
	Description string     `gorm:"size:255" json:"description"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
}

// FinancialRecord is an amount due from a resident for an address.
// PaidDate is only set while IsPaid is true.
type FinancialRecord struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	ResidentID int64      `gorm:"not null;index" json:"resident_id"`
	AddressID  int64      `gorm:"not null;index" json:"address_id"`
	ChargeID   int64      `gorm:"not null;index" json:"charge_id"`
	Amount     float64    `gorm:"not null" json:"amount"`
	DueDate    time.Time  `gorm:"not null;index" json:"due_date"`
	PaidDate   *time.Time `json:"paid_date,omitempty"`
	IsPaid     bool       `gorm:"not null;index" json:"is_paid"`
	Notes      string     `gorm:"size:255" json:"notes"`

	// Associations
	Resident *Resident `json:"resident,omitempty"`
	Address  *Address  `json:"address,omitempty"`
	Charge   *Charge   `json:"charge,omitempty"`
}
