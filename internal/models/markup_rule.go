package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarkupType selects the formula used to turn a base price into a markup amount.
type MarkupType string

const (
	MarkupTypeFixed   MarkupType = "FIXED"
	MarkupTypePercent MarkupType = "PERCENT"
)

// Decimal places of the stored columns. Values with more places cannot be
// persisted unchanged.
const (
	MoneyScale   int32 = 2
	PercentScale int32 = 4
)

// MarkupRule is an administrator-managed markup applied on top of supplier prices.
// A nil scope field is a wildcard for that dimension.
type MarkupRule struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string `json:"name" gorm:"type:varchar(100)" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`

	StoreID    *string `json:"store_id" gorm:"type:varchar(36);index" validate:"omitempty,max=36"`
	SupplierID *string `json:"supplier_id" gorm:"type:varchar(36);index" validate:"omitempty,max=36"`
	CategoryID *string `json:"category_id" gorm:"type:varchar(36);index" validate:"omitempty,max=36"`
	MaterialID *string `json:"material_id" gorm:"type:varchar(36);index" validate:"omitempty,max=36"`

	MarkupType  MarkupType       `json:"markup_type" gorm:"type:varchar(16)" validate:"required,oneof=FIXED PERCENT"`
	MarkupValue decimal.Decimal  `json:"markup_value" gorm:"type:decimal(12,4)"`
	MinMarkup   *decimal.Decimal `json:"min_markup" gorm:"type:decimal(12,2)"`
	MaxMarkup   *decimal.Decimal `json:"max_markup" gorm:"type:decimal(12,2)"`

	Priority int  `json:"priority" gorm:"index"`
	IsActive bool `json:"is_active" gorm:"index"`

	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`

	CreatedBy string    `json:"created_by" gorm:"type:varchar(100)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PricingContext identifies what is being priced. A nil field means the caller
// does not scope by that dimension.
type PricingContext struct {
	StoreID    *string `json:"store_id,omitempty"`
	SupplierID *string `json:"supplier_id,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
	MaterialID *string `json:"material_id,omitempty"`
}

// PriceQuote is the result of pricing a base price against the rule set.
type PriceQuote struct {
	OriginalPrice decimal.Decimal `json:"original_price"`
	MarkupAmount  decimal.Decimal `json:"markup_amount"`
	FinalPrice    decimal.Decimal `json:"final_price"`
	Rule          *MarkupRule     `json:"matched_rule,omitempty"`
}

// RuleID returns the id of the matched rule, or nil when the quote is a passthrough.
func (q PriceQuote) RuleID() *string {
	if q.Rule == nil {
		return nil
	}
	id := q.Rule.ID
	return &id
}
