package model

import "time"

// Capability is one of the four permission flags.
type Capability string

const (
	CanView   Capability = "view"
	CanAdd    Capability = "add"
	CanEdit   Capability = "edit"
	CanDelete Capability = "delete"
)

// User is an operator account.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash []byte    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"size:100" json:"full_name"`
	Email        string    `gorm:"size:100" json:"email"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Associations
	Permissions       []*Permission      `gorm:"many2many:user_permission;" json:"permissions,omitempty"`
	PushSubscriptions []PushSubscription `gorm:"foreignKey:UserID" json:"-"`
}

// HasPermission reports whether any loaded permission for module grants c.
func (u *User) HasPermission(module string, c Capability) bool {
	for _, p := range u.Permissions {
		if p.Module == module && p.Allows(c) {
			return true
		}
	}
	return false
}

// Permission grants capabilities on one module.
type Permission struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Module    string `gorm:"size:50;not null" json:"module"`
	CanView   bool   `gorm:"not null" json:"can_view"`
	CanAdd    bool   `gorm:"not null" json:"can_add"`
	CanEdit   bool   `gorm:"not null" json:"can_edit"`
	CanDelete bool   `gorm:"not null" json:"can_delete"`
}

// Allows reports whether the permission grants c.
func (p *Permission) Allows(c Capability) bool {
	switch c {
	case CanView:
		return p.CanView
	case CanAdd:
		return p.CanAdd
	case CanEdit:
		return p.CanEdit
	case CanDelete:
		return p.CanDelete
	}
	return false
}

// Module names used by permissions.
const (
	ModuleDashboard  = "dashboard"
	ModuleAddresses  = "address_management"
	ModuleResidents  = "resident_management"
	ModuleFinancial  = "financial_management"
	ModuleComplaints = "complaint_management"
	ModuleUsers      = "user_management"
)
