package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"grosir/internal/models"
	"grosir/internal/repositories"
)

// MaterialService handles business logic related to materials.
type MaterialService struct {
	repo repositories.MaterialRepository
}

// NewMaterialService creates a new MaterialService.
func NewMaterialService(repo repositories.MaterialRepository) *MaterialService {
	return &MaterialService{
		repo: repo,
	}
}

// GetAllMaterials retrieves all materials.
func (s *MaterialService) GetAllMaterials(ctx context.Context) ([]models.Material, error) {
	return s.repo.GetAll(ctx)
}

// GetMaterialByID retrieves a single material by its ID.
func (s *MaterialService) GetMaterialByID(ctx context.Context, id string) (*models.Material, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateMaterial creates a new material.
func (s *MaterialService) CreateMaterial(ctx context.Context, material *models.Material) error {
	if err := checkPrice(material.Price); err != nil {
		return err
	}
	material.CategoryID = normalizeOptional(material.CategoryID)
	return s.repo.Create(ctx, material)
}

// UpdateMaterial updates an existing material.
func (s *MaterialService) UpdateMaterial(ctx context.Context, material *models.Material) error {
	if err := checkPrice(material.Price); err != nil {
		return err
	}
	material.CategoryID = normalizeOptional(material.CategoryID)
	return s.repo.Update(ctx, material)
}

// checkPrice rejects prices that are negative or finer than a cent.
func checkPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative, got %s", ErrInvalidMaterial, price)
	}
	if !fitsScale(price, models.MoneyScale) {
		return fmt.Errorf("%w: price has more than %d decimal places, got %s", ErrInvalidMaterial, models.MoneyScale, price)
	}
	return nil
}

// DeleteMaterial deletes a material by its ID.
func (s *MaterialService) DeleteMaterial(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
