package models

import (
	"strings"
	"time"
)

// AdminProfile extends an ADMIN/SUB_ADMIN user with an active flag and
// module-level permissions. SUPER_ADMIN bypasses it, CUSTOMER never gets one.
// IsActive carries no column default: a gorm default tag would override an
// explicit false on insert, and every creator sets the flag anyway.
type AdminProfile struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uint         `gorm:"uniqueIndex;not null" json:"user_id"`
	User        User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	IsActive    bool         `json:"is_active"`
	Permissions []Permission `gorm:"foreignKey:AdminProfileID;constraint:OnDelete:CASCADE" json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Permission pairs a module name with the set of rights granted on it,
// e.g. {Module: "PRODUCTS", Rights: ["VIEW", "CREATE"]}.
type Permission struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	AdminProfileID uint     `gorm:"index;not null" json:"admin_profile_id"`
	Module         string   `gorm:"size:100;not null" json:"module"`
	Rights         []string `gorm:"serializer:json" json:"rights"`
}

// HasPermission reports whether the profile grants right on module.
// Matching is case-insensitive on both sides.
func (a *AdminProfile) HasPermission(module, right string) bool {
	for _, p := range a.Permissions {
		if !strings.EqualFold(p.Module, module) {
			continue
		}
		for _, r := range p.Rights {
			if strings.EqualFold(r, right) {
				return true
			}
		}
	}
	return false
}
