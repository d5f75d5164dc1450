package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"grosir/internal/models"
)

// MockMarkupRuleRepository is an in-memory implementation of MarkupRuleRepository.
type MockMarkupRuleRepository struct {
	rules map[string]models.MarkupRule
	mu    sync.RWMutex
}

// NewMockMarkupRuleRepository creates a new instance of MockMarkupRuleRepository.
func NewMockMarkupRuleRepository() *MockMarkupRuleRepository {
	return &MockMarkupRuleRepository{
		rules: make(map[string]models.MarkupRule),
	}
}

// AllEnabledRules returns every active rule.
func (r *MockMarkupRuleRepository) AllEnabledRules(_ context.Context) ([]models.MarkupRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]models.MarkupRule, 0, len(r.rules))
	for _, rule := range r.rules {
		if rule.IsActive {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// GetAll returns all rules, highest priority first.
func (r *MockMarkupRuleRepository) GetAll(_ context.Context) ([]models.MarkupRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]models.MarkupRule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
	return rules, nil
}

// GetByID returns a rule by its ID.
func (r *MockMarkupRuleRepository) GetByID(_ context.Context, id string) (*models.MarkupRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[id]
	if !ok {
		return nil, fmt.Errorf("markup rule with ID %s: %w", id, ErrNotFound)
	}
	return &rule, nil
}

// Create adds a new rule.
func (r *MockMarkupRuleRepository) Create(_ context.Context, rule *models.MarkupRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt
	r.rules[rule.ID] = *rule
	return nil
}

// Update replaces an existing rule, keeping its audit fields.
func (r *MockMarkupRuleRepository) Update(_ context.Context, rule *models.MarkupRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rules[rule.ID]
	if !ok {
		return fmt.Errorf("markup rule with ID %s for update: %w", rule.ID, ErrNotFound)
	}
	rule.CreatedAt = existing.CreatedAt
	rule.CreatedBy = existing.CreatedBy
	rule.UpdatedAt = time.Now()
	r.rules[rule.ID] = *rule
	return nil
}

// SetActive flips the administrative switch of a rule.
func (r *MockMarkupRuleRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[id]
	if !ok {
		return fmt.Errorf("markup rule with ID %s for activation: %w", id, ErrNotFound)
	}
	rule.IsActive = active
	rule.UpdatedAt = time.Now()
	r.rules[id] = rule
	return nil
}

// Delete removes a rule by its ID.
func (r *MockMarkupRuleRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[id]; !ok {
		return fmt.Errorf("markup rule with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.rules, id)
	return nil
}
