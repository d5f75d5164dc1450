package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderItem represents a single line within an order. Prices are frozen at
// checkout and never recomputed.
type OrderItem struct {
	ID            uint            `json:"-" gorm:"primaryKey"`
	OrderID       string          `json:"-" gorm:"type:varchar(36);index"`
	MaterialID    string          `json:"material_id" gorm:"type:varchar(36)"`
	SupplierID    string          `json:"supplier_id" gorm:"type:varchar(36)"`
	Quantity      int             `json:"quantity"`
	OriginalPrice decimal.Decimal `json:"original_price" gorm:"type:decimal(12,2)"`
	MarkupAmount  decimal.Decimal `json:"markup_amount" gorm:"type:decimal(12,2)"`
	FinalPrice    decimal.Decimal `json:"final_price" gorm:"type:decimal(12,2)"`
	MarkupRuleID  *string         `json:"markup_rule_id" gorm:"type:varchar(36)"`
}

// Order represents a store's purchase order.
type Order struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string          `json:"user_id" gorm:"type:varchar(36)"`
	StoreID     string          `json:"store_id" gorm:"type:varchar(36);index"`
	Items       []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(14,2)"`
	Status      string          `json:"status" gorm:"type:varchar(16)"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderLineRequest is one requested line of a new order.
type OrderLineRequest struct {
	MaterialID string `json:"material_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	UserID  string             `json:"user_id" validate:"required"`
	StoreID string             `json:"store_id" validate:"required"`
	Items   []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}
