package models

import "time"

type Story struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:180;uniqueIndex;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Image     string    `json:"image"`
	Date      time.Time `json:"date"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
