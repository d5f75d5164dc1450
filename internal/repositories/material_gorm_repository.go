package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"grosir/internal/models"
)

// GORMMaterialRepository is a GORM implementation of MaterialRepository.
type GORMMaterialRepository struct {
	db *gorm.DB
}

// NewGORMMaterialRepository creates a new instance of GORMMaterialRepository.
func NewGORMMaterialRepository(db *gorm.DB) *GORMMaterialRepository {
	return &GORMMaterialRepository{
		db: db,
	}
}

// GetAll retrieves all materials from the database.
func (r *GORMMaterialRepository) GetAll(ctx context.Context) ([]models.Material, error) {
	var materials []models.Material
	if err := r.db.WithContext(ctx).Order("name").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to get all materials: %w", err)
	}
	return materials, nil
}

// GetByID retrieves a single material by its ID from the database.
func (r *GORMMaterialRepository) GetByID(ctx context.Context, id string) (*models.Material, error) {
	var material models.Material
	if err := r.db.WithContext(ctx).First(&material, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("material with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get material by ID %s: %w", id, err)
	}
	return &material, nil
}

// Create creates a new material in the database.
func (r *GORMMaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(material).Error; err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}
	return nil
}

// Update updates an existing material in the database.
func (r *GORMMaterialRepository) Update(ctx context.Context, material *models.Material) error {
	res := r.db.WithContext(ctx).Model(&models.Material{}).Where("id = ?", material.ID).
		Select("*").Omit("id", "created_at").Updates(material)
	if res.Error != nil {
		return fmt.Errorf("failed to update material: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Updates reports no error for a missing row, only zero rows affected.
		return fmt.Errorf("material with ID %s for update: %w", material.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a material by its ID from the database.
func (r *GORMMaterialRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Material{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete material: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("material with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}
