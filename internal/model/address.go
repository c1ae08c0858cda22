package model

import "time"

// Address represents a unit of the property complex.
type Address struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Category    Category  `gorm:"size:4;not null;index" json:"category"`
	Number      string    `gorm:"size:20;not null" json:"number"`
	Row         string    `gorm:"size:20;not null" json:"row"`
	Block       Block     `gorm:"size:1;not null;index" json:"block"`
	TotalFloors int       `gorm:"not null" json:"total_floors"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Associations
	Floors    []Floor     `gorm:"foreignKey:AddressID" json:"floors,omitempty"`
	Residents []*Resident `gorm:"many2many:address_resident;" json:"-"`
}

// Floor is one level of an address. The role flags are independent of each
// other; ShopCount only carries meaning when IsShop is set.
type Floor struct {
	ID           int64 `gorm:"primaryKey" json:"id"`
	AddressID    int64 `gorm:"not null;uniqueIndex:idx_floor_address_number" json:"address_id"`
	FloorNumber  int   `gorm:"not null;uniqueIndex:idx_floor_address_number" json:"floor_number"`
	IsOwner      bool  `gorm:"not null" json:"is_owner"`
	IsTenant     bool  `gorm:"not null" json:"is_tenant"`
	IsCommercial bool  `gorm:"not null" json:"is_commercial"`
	IsShop       bool  `gorm:"not null" json:"is_shop"`
	IsVacant     bool  `gorm:"not null" json:"is_vacant"`
	ShopCount    int   `gorm:"not null" json:"shop_count"`

	// Associations
	Address *Address `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
