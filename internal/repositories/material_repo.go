package repositories

import (
	"context"

	"grosir/internal/models"
)

// MaterialRepository defines the interface for material data access.
type MaterialRepository interface {
	GetAll(ctx context.Context) ([]models.Material, error)
	GetByID(ctx context.Context, id string) (*models.Material, error)
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id string) error
}
