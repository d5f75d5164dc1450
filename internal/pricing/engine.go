// Package pricing resolves markup rules against a pricing context and computes
// marked-up prices. Every pricing call site goes through Engine so that cart,
// checkout and admin previews agree on the result.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"grosir/internal/models"
)

// RuleStore provides the enabled rule set. Implementations return every rule
// with IsActive set, regardless of time window or scope, in any order.
// Callers must not modify the returned slice.
type RuleStore interface {
	AllEnabledRules(ctx context.Context) ([]models.MarkupRule, error)
}

// Engine composes rule resolution and markup calculation.
type Engine struct {
	store      RuleStore
	resolver   Resolver
	calculator Calculator
	log        *zap.Logger
}

// NewEngine creates an Engine reading rules from store.
func NewEngine(store RuleStore, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store: store,
		log:   log.Named("pricing.engine"),
	}
}

// ResolveActiveRules lists the enabled rules that are valid at asOf, highest
// priority first.
func (e *Engine) ResolveActiveRules(ctx context.Context, asOf time.Time) ([]models.MarkupRule, error) {
	rules, err := e.store.AllEnabledRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load markup rules: %w", err)
	}
	return e.resolver.ActiveAt(rules, asOf), nil
}

// PriceWithMarkup prices basePrice for pctx at asOf. When no rule applies the
// quote passes the base price through.
func (e *Engine) PriceWithMarkup(ctx context.Context, pctx models.PricingContext, basePrice decimal.Decimal, asOf time.Time) (*models.PriceQuote, error) {
	rules, err := e.store.AllEnabledRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load markup rules: %w", err)
	}

	rule := e.resolver.Resolve(rules, pctx, asOf)
	quote := e.calculator.Compute(rule, basePrice)

	if rule != nil {
		e.log.Debug("markup rule applied",
			zap.String("rule_id", rule.ID),
			zap.Int("priority", rule.Priority),
			zap.String("base_price", basePrice.String()),
			zap.String("markup_amount", quote.MarkupAmount.String()),
		)
	} else {
		e.log.Debug("no markup rule matched", zap.String("base_price", basePrice.String()))
	}
	return &quote, nil
}
