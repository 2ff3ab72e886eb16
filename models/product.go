package models

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Brand struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ProductID   int    `gorm:"uniqueIndex;not null" json:"product_id"` // human-facing numeric id
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	SKU         string `gorm:"size:100;uniqueIndex;not null" json:"sku"`

	Price         float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Discount      float64 `gorm:"type:decimal(10,2);default:0" json:"discount"`
	StockQuantity int     `gorm:"default:0" json:"stock_quantity"`

	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	BrandID    *uint     `gorm:"index" json:"brand_id,omitempty"`
	Brand      *Brand    `gorm:"foreignKey:BrandID" json:"brand,omitempty"`

	ImageURL         string   `json:"image_url"`
	AdditionalImages []string `gorm:"serializer:json" json:"additional_images"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
