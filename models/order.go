package models

import "time"

const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusReturned  = "RETURNED"
)

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	OrderNumber     string      `gorm:"size:64;uniqueIndex;not null" json:"order_number"`
	UserID          uint        `gorm:"index;not null" json:"user_id"`
	User            User        `gorm:"foreignKey:UserID" json:"-"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount     float64     `gorm:"type:decimal(10,2)" json:"total_amount"`
	Status          string      `gorm:"type:varchar(20);default:'PENDING';index" json:"status"`
	ShippingAddress string      `gorm:"type:text" json:"shipping_address"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem snapshots the product price at order time.
type OrderItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	OrderID   uint     `gorm:"index;not null" json:"order_id"`
	ProductID uint     `gorm:"index;not null" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int      `gorm:"not null" json:"quantity"`
	UnitPrice float64  `gorm:"type:decimal(10,2)" json:"unit_price"`
}
