package pricing

import (
	"sort"
	"time"

	"grosir/internal/models"
)

// ValidAt reports whether rule's validity window contains asOf. Both ends are
// inclusive and a nil end is unbounded.
func ValidAt(rule models.MarkupRule, asOf time.Time) bool {
	if rule.StartTime != nil && rule.StartTime.After(asOf) {
		return false
	}
	if rule.EndTime != nil && rule.EndTime.Before(asOf) {
		return false
	}
	return true
}

// Matches reports whether rule applies to pctx. A dimension the caller left out
// only matches rules that are wildcarded on it.
func Matches(rule models.MarkupRule, pctx models.PricingContext) bool {
	return dimensionMatches(rule.StoreID, pctx.StoreID) &&
		dimensionMatches(rule.SupplierID, pctx.SupplierID) &&
		dimensionMatches(rule.CategoryID, pctx.CategoryID) &&
		dimensionMatches(rule.MaterialID, pctx.MaterialID)
}

func dimensionMatches(ruleValue, contextValue *string) bool {
	if ruleValue == nil {
		return true
	}
	if contextValue == nil {
		return false
	}
	return *ruleValue == *contextValue
}

// outranks orders rules by priority descending, then id ascending.
func outranks(a, b models.MarkupRule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.ID < b.ID
}

// Resolver picks the single rule that applies to a pricing context.
type Resolver struct{}

// Resolve returns the winning rule among rules for pctx at asOf, or nil when
// none applies. Equal priorities are settled by the lowest id.
func (Resolver) Resolve(rules []models.MarkupRule, pctx models.PricingContext, asOf time.Time) *models.MarkupRule {
	var winner *models.MarkupRule
	for i := range rules {
		if !ValidAt(rules[i], asOf) || !Matches(rules[i], pctx) {
			continue
		}
		if winner == nil || outranks(rules[i], *winner) {
			winner = &rules[i]
		}
	}
	if winner == nil {
		return nil
	}
	picked := *winner
	return &picked
}

// ActiveAt returns a new slice with the rules valid at asOf, in rank order.
func (Resolver) ActiveAt(rules []models.MarkupRule, asOf time.Time) []models.MarkupRule {
	active := make([]models.MarkupRule, 0, len(rules))
	for _, rule := range rules {
		if ValidAt(rule, asOf) {
			active = append(active, rule)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return outranks(active[i], active[j])
	})
	return active
}
