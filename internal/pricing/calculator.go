package pricing

import (
	"github.com/shopspring/decimal"

	"grosir/internal/models"
)

// markupScale is the number of decimal places a percentage markup is rounded to.
const markupScale = 2

// Calculator turns a resolved rule and a base price into a quote.
type Calculator struct{}

// Compute prices basePrice under rule. A nil rule yields the base price unchanged.
// Negative inputs are computed as given.
func (Calculator) Compute(rule *models.MarkupRule, basePrice decimal.Decimal) models.PriceQuote {
	quote := models.PriceQuote{
		OriginalPrice: basePrice,
		MarkupAmount:  decimal.Zero,
		FinalPrice:    basePrice,
	}
	if rule == nil {
		return quote
	}

	quote.Rule = rule
	quote.MarkupAmount = MarkupAmount(*rule, basePrice)
	quote.FinalPrice = basePrice.Add(quote.MarkupAmount)
	return quote
}

// MarkupAmount computes the markup rule adds to basePrice.
func MarkupAmount(rule models.MarkupRule, basePrice decimal.Decimal) decimal.Decimal {
	switch rule.MarkupType {
	case models.MarkupTypeFixed:
		return rule.MarkupValue
	case models.MarkupTypePercent:
		raw := basePrice.Mul(rule.MarkupValue)
		if rule.MinMarkup != nil && raw.LessThan(*rule.MinMarkup) {
			raw = *rule.MinMarkup
		}
		if rule.MaxMarkup != nil && raw.GreaterThan(*rule.MaxMarkup) {
			raw = *rule.MaxMarkup
		}
		// Round is half away from zero.
		return raw.Round(markupScale)
	default:
		return decimal.Zero
	}
}
