package models

import "time"

// ContactSetting is the CMS-managed contact block shown on the storefront.
// Only the newest active row is served publicly.
type ContactSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	MapURL    string    `json:"map_url"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	MessageStatusNew      = "NEW"
	MessageStatusRead     = "READ"
	MessageStatusArchived = "ARCHIVED"
)

// ContactMessage is a contact-form submission.
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Phone     string    `gorm:"size:50" json:"phone,omitempty"`
	Subject   string    `gorm:"size:255" json:"subject"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Status    string    `gorm:"type:varchar(20);default:'NEW';index" json:"status"`
	HandledBy *uint     `json:"handled_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
