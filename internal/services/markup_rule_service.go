package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"grosir/internal/clock"
	"grosir/internal/models"
	"grosir/internal/pricing"
	"grosir/internal/repositories"
)

// RuleCacheInvalidator drops cached rule snapshots. *cache.RuleCache satisfies it.
type RuleCacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// MarkupRuleEvent is published after every rule mutation.
type MarkupRuleEvent struct {
	Event     string    `json:"event"`
	RuleID    string    `json:"rule_id"`
	Timestamp time.Time `json:"timestamp"`
}

// MarkupRuleService handles administration of markup rules and the admin
// pricing preview.
type MarkupRuleService struct {
	repo     repositories.MarkupRuleRepository
	engine   *pricing.Engine
	cache    RuleCacheInvalidator
	events   EventPublisher
	clock    clock.Clock
	validate *validator.Validate
	log      *zap.Logger
}

// NewMarkupRuleService creates a new MarkupRuleService. cache and events may be nil.
func NewMarkupRuleService(repo repositories.MarkupRuleRepository, engine *pricing.Engine, cache RuleCacheInvalidator, events EventPublisher, clk clock.Clock, log *zap.Logger) *MarkupRuleService {
	if log == nil {
		log = zap.NewNop()
	}
	if clk == nil {
		clk = clock.New()
	}
	validate := validator.New()
	validate.RegisterStructValidation(validateMarkupRule, models.MarkupRule{})

	return &MarkupRuleService{
		repo:     repo,
		engine:   engine,
		cache:    cache,
		events:   events,
		clock:    clk,
		validate: validate,
		log:      log.Named("services.markup_rule"),
	}
}

// validateMarkupRule checks the numeric and time invariants tags cannot express.
func validateMarkupRule(sl validator.StructLevel) {
	rule := sl.Current().Interface().(models.MarkupRule)

	if rule.MarkupValue.IsNegative() {
		sl.ReportError(rule.MarkupValue, "MarkupValue", "MarkupValue", "gte", "0")
	}
	valueScale := models.MoneyScale
	if rule.MarkupType == models.MarkupTypePercent {
		valueScale = models.PercentScale
	}
	if !fitsScale(rule.MarkupValue, valueScale) {
		sl.ReportError(rule.MarkupValue, "MarkupValue", "MarkupValue", "scale", strconv.Itoa(int(valueScale)))
	}
	if rule.MinMarkup != nil && !fitsScale(*rule.MinMarkup, models.MoneyScale) {
		sl.ReportError(rule.MinMarkup, "MinMarkup", "MinMarkup", "scale", "2")
	}
	if rule.MaxMarkup != nil && !fitsScale(*rule.MaxMarkup, models.MoneyScale) {
		sl.ReportError(rule.MaxMarkup, "MaxMarkup", "MaxMarkup", "scale", "2")
	}
	if rule.MinMarkup != nil && rule.MinMarkup.IsNegative() {
		sl.ReportError(rule.MinMarkup, "MinMarkup", "MinMarkup", "gte", "0")
	}
	if rule.MaxMarkup != nil && rule.MaxMarkup.IsNegative() {
		sl.ReportError(rule.MaxMarkup, "MaxMarkup", "MaxMarkup", "gte", "0")
	}
	if rule.MinMarkup != nil && rule.MaxMarkup != nil && rule.MinMarkup.GreaterThan(*rule.MaxMarkup) {
		sl.ReportError(rule.MaxMarkup, "MaxMarkup", "MaxMarkup", "gtefield", "MinMarkup")
	}
	if rule.StartTime != nil && rule.EndTime != nil && rule.StartTime.After(*rule.EndTime) {
		sl.ReportError(rule.EndTime, "EndTime", "EndTime", "gtefield", "StartTime")
	}
}

// fitsScale reports whether d has at most places significant decimal places.
func fitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Round(places))
}

// ValidateRule normalizes blank scope ids to wildcards and checks the rule.
func (s *MarkupRuleService) ValidateRule(rule *models.MarkupRule) error {
	rule.StoreID = normalizeOptional(rule.StoreID)
	rule.SupplierID = normalizeOptional(rule.SupplierID)
	rule.CategoryID = normalizeOptional(rule.CategoryID)
	rule.MaterialID = normalizeOptional(rule.MaterialID)

	if err := s.validate.Struct(rule); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	return nil
}

// ListRules retrieves all rules, enabled or not.
func (s *MarkupRuleService) ListRules(ctx context.Context) ([]models.MarkupRule, error) {
	return s.repo.GetAll(ctx)
}

// GetRule retrieves a single rule by its ID.
func (s *MarkupRuleService) GetRule(ctx context.Context, id string) (*models.MarkupRule, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateRule validates and stores a new rule. The rule's ID is assigned here.
func (s *MarkupRuleService) CreateRule(ctx context.Context, rule *models.MarkupRule) error {
	if err := s.ValidateRule(rule); err != nil {
		return err
	}
	rule.ID = ""
	if err := s.repo.Create(ctx, rule); err != nil {
		return err
	}
	s.afterMutation(ctx, "markup_rule.created", rule.ID)
	return nil
}

// UpdateRule validates and replaces an existing rule.
func (s *MarkupRuleService) UpdateRule(ctx context.Context, rule *models.MarkupRule) error {
	if err := s.ValidateRule(rule); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, rule); err != nil {
		return err
	}
	s.afterMutation(ctx, "markup_rule.updated", rule.ID)
	return nil
}

// SetRuleActive enables or disables a rule.
func (s *MarkupRuleService) SetRuleActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	event := "markup_rule.deactivated"
	if active {
		event = "markup_rule.activated"
	}
	s.afterMutation(ctx, event, id)
	return nil
}

// DeleteRule removes a rule.
func (s *MarkupRuleService) DeleteRule(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, "markup_rule.deleted", id)
	return nil
}

// ListActiveRules lists the rules in effect at asOf, or now when asOf is nil.
func (s *MarkupRuleService) ListActiveRules(ctx context.Context, asOf *time.Time) ([]models.MarkupRule, error) {
	return s.engine.ResolveActiveRules(ctx, s.at(asOf))
}

// Simulate previews the price a context would get at asOf, or now when asOf is nil.
func (s *MarkupRuleService) Simulate(ctx context.Context, pctx models.PricingContext, basePrice decimal.Decimal, asOf *time.Time) (*models.PriceQuote, error) {
	pctx.StoreID = normalizeOptional(pctx.StoreID)
	pctx.SupplierID = normalizeOptional(pctx.SupplierID)
	pctx.CategoryID = normalizeOptional(pctx.CategoryID)
	pctx.MaterialID = normalizeOptional(pctx.MaterialID)
	return s.engine.PriceWithMarkup(ctx, pctx, basePrice, s.at(asOf))
}

func (s *MarkupRuleService) at(asOf *time.Time) time.Time {
	if asOf != nil {
		return *asOf
	}
	return s.clock.Now()
}

// afterMutation drops cached rules before returning to the caller, so the
// acting administrator reads their own write, then announces the change.
func (s *MarkupRuleService) afterMutation(ctx context.Context, event string, ruleID string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Error("rule cache invalidation failed", zap.String("rule_id", ruleID), zap.Error(err))
		}
	}
	s.log.Info("markup rule changed", zap.String("event", event), zap.String("rule_id", ruleID))
	publishEvent(s.events, s.log, event, MarkupRuleEvent{
		Event:     event,
		RuleID:    ruleID,
		Timestamp: s.clock.Now(),
	})
}
