package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is a purchasable item offered by a supplier. Price is the supplier
// list price and is the base price for markup calculation.
type Material struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	SupplierID  string          `json:"supplier_id" gorm:"type:varchar(36);index" validate:"required,max=36"`
	CategoryID  *string         `json:"category_id" gorm:"type:varchar(36);index" validate:"omitempty,max=36"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
