package cache

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"grosir/internal/models"
	"grosir/internal/pricing"
)

// RuleCache serves the enabled rule set from memory. A snapshot is reused only
// while the generation it was loaded under is still current.
type RuleCache struct {
	source pricing.RuleStore
	gen    Generation
	log    *zap.Logger

	mu          sync.RWMutex
	snapshot    []models.MarkupRule
	snapshotGen int64
	loaded      bool
	epoch       uint64 // bumped by Purge; a load started in an older epoch is discarded
}

// NewRuleCache wraps source. A nil gen keeps the generation in process.
func NewRuleCache(source pricing.RuleStore, gen Generation, log *zap.Logger) *RuleCache {
	if gen == nil {
		gen = NewLocalGeneration()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RuleCache{
		source: source,
		gen:    gen,
		log:    log.Named("cache.rules"),
	}
}

// AllEnabledRules implements pricing.RuleStore. When the generation cannot be
// read the source is queried directly.
func (c *RuleCache) AllEnabledRules(ctx context.Context) ([]models.MarkupRule, error) {
	current, err := c.gen.Current(ctx)
	if err != nil {
		c.log.Warn("rule generation unavailable, bypassing cache", zap.Error(err))
		return c.source.AllEnabledRules(ctx)
	}

	c.mu.RLock()
	if c.loaded && c.snapshotGen == current {
		rules := c.snapshot
		c.mu.RUnlock()
		return rules, nil
	}
	epoch := c.epoch
	c.mu.RUnlock()

	rules, err := c.source.AllEnabledRules(ctx)
	if err != nil {
		return nil, err
	}

	after, err := c.gen.Current(ctx)
	if err != nil || after != current {
		// The rule set moved while loading; serve what was read but do not keep it.
		return rules, nil
	}

	c.mu.Lock()
	if c.epoch == epoch {
		c.snapshot = rules
		c.snapshotGen = current
		c.loaded = true
	}
	c.mu.Unlock()

	c.log.Debug("rule snapshot loaded", zap.Int64("generation", current), zap.Int("rules", len(rules)))
	return rules, nil
}

// Invalidate bumps the shared generation and drops the local snapshot. It is
// called after every administrative mutation, before the mutation returns.
func (c *RuleCache) Invalidate(ctx context.Context) error {
	c.Purge()
	if _, err := c.gen.Bump(ctx); err != nil {
		return fmt.Errorf("failed to invalidate rule cache: %w", err)
	}
	return nil
}

// Purge drops the local snapshot without touching the shared generation.
func (c *RuleCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = nil
	c.loaded = false
	c.epoch++
}
