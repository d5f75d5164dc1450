package repositories

import (
	"context"

	"grosir/internal/models"
)

// MarkupRuleRepository defines the interface for markup rule data access.
// AllEnabledRules makes every implementation usable as a pricing.RuleStore.
type MarkupRuleRepository interface {
	AllEnabledRules(ctx context.Context) ([]models.MarkupRule, error)
	GetAll(ctx context.Context) ([]models.MarkupRule, error)
	GetByID(ctx context.Context, id string) (*models.MarkupRule, error)
	Create(ctx context.Context, rule *models.MarkupRule) error
	Update(ctx context.Context, rule *models.MarkupRule) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}
