package models

import "time"

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleSubAdmin   Role = "SUB_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// AdminRoles are the roles allowed onto the admin surface at all.
var AdminRoles = []Role{RoleSuperAdmin, RoleAdmin, RoleSubAdmin}

func ValidRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleSubAdmin, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserName    string `gorm:"size:100;uniqueIndex;not null" json:"user_name"`
	FullName    string `gorm:"size:200;not null" json:"full_name"`
	Email       string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PhoneNumber string `gorm:"size:20" json:"phone_number,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Password    string `gorm:"not null" json:"-"` // bcrypt hash
	Role        Role   `gorm:"type:varchar(20);default:'CUSTOMER';not null" json:"role"`

	IsEmailVerified         bool       `gorm:"default:false" json:"is_email_verified"`
	EmailVerificationToken  string     `json:"-"` // bcrypt hash of the mailed token
	EmailVerificationExpiry *time.Time `json:"-"`
	ForgotPasswordToken     string     `json:"-"`
	ForgotPasswordExpiry    *time.Time `json:"-"`

	// Most recently issued refresh token; anything older is implicitly revoked.
	RefreshToken string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
