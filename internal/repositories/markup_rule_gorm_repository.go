package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"grosir/internal/models"
)

// GORMMarkupRuleRepository is a GORM implementation of MarkupRuleRepository.
type GORMMarkupRuleRepository struct {
	db *gorm.DB
}

// NewGORMMarkupRuleRepository creates a new instance of GORMMarkupRuleRepository.
func NewGORMMarkupRuleRepository(db *gorm.DB) *GORMMarkupRuleRepository {
	return &GORMMarkupRuleRepository{
		db: db,
	}
}

// AllEnabledRules retrieves every rule whose administrative flag is on.
func (r *GORMMarkupRuleRepository) AllEnabledRules(ctx context.Context) ([]models.MarkupRule, error) {
	var rules []models.MarkupRule
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to get enabled markup rules: %w", err)
	}
	return rules, nil
}

// GetAll retrieves all markup rules, highest priority first.
func (r *GORMMarkupRuleRepository) GetAll(ctx context.Context) ([]models.MarkupRule, error) {
	var rules []models.MarkupRule
	if err := r.db.WithContext(ctx).Order("priority DESC").Order("id ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to get all markup rules: %w", err)
	}
	return rules, nil
}

// GetByID retrieves a single markup rule by its ID.
func (r *GORMMarkupRuleRepository) GetByID(ctx context.Context, id string) (*models.MarkupRule, error) {
	var rule models.MarkupRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("markup rule with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get markup rule by ID %s: %w", id, err)
	}
	return &rule, nil
}

// Create creates a new markup rule in the database.
func (r *GORMMarkupRuleRepository) Create(ctx context.Context, rule *models.MarkupRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create markup rule: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing markup rule.
func (r *GORMMarkupRuleRepository) Update(ctx context.Context, rule *models.MarkupRule) error {
	res := r.db.WithContext(ctx).Model(&models.MarkupRule{}).Where("id = ?", rule.ID).
		Select("*").Omit("id", "created_at", "created_by").Updates(rule)
	if res.Error != nil {
		return fmt.Errorf("failed to update markup rule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("markup rule with ID %s for update: %w", rule.ID, ErrNotFound)
	}
	return nil
}

// SetActive flips the administrative switch of a rule.
func (r *GORMMarkupRuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.MarkupRule{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to set markup rule active flag: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("markup rule with ID %s for activation: %w", id, ErrNotFound)
	}
	return nil
}

// Delete deletes a markup rule by its ID.
func (r *GORMMarkupRuleRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.MarkupRule{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete markup rule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("markup rule with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}
