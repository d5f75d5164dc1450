package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"grosir/internal/models"
)

// MockMaterialRepository is an in-memory implementation of MaterialRepository.
type MockMaterialRepository struct {
	materials map[string]models.Material
	mu        sync.RWMutex
}

// NewMockMaterialRepository creates a new instance of MockMaterialRepository.
func NewMockMaterialRepository() *MockMaterialRepository {
	return &MockMaterialRepository{
		materials: make(map[string]models.Material),
	}
}

// GetAll returns all materials.
func (r *MockMaterialRepository) GetAll(_ context.Context) ([]models.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	materialList := make([]models.Material, 0, len(r.materials))
	for _, m := range r.materials {
		materialList = append(materialList, m)
	}
	return materialList, nil
}

// GetByID returns a material by its ID.
func (r *MockMaterialRepository) GetByID(_ context.Context, id string) (*models.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	material, ok := r.materials[id]
	if !ok {
		return nil, fmt.Errorf("material with ID %s: %w", id, ErrNotFound)
	}
	return &material, nil
}

// Create adds a new material.
func (r *MockMaterialRepository) Create(_ context.Context, material *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if material.ID == "" {
		material.ID = uuid.New().String()
	}
	r.materials[material.ID] = *material
	return nil
}

// Update modifies an existing material.
func (r *MockMaterialRepository) Update(_ context.Context, material *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.materials[material.ID]; !ok {
		return fmt.Errorf("material with ID %s for update: %w", material.ID, ErrNotFound)
	}
	r.materials[material.ID] = *material
	return nil
}

// Delete removes a material by its ID.
func (r *MockMaterialRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.materials[id]; !ok {
		return fmt.Errorf("material with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.materials, id)
	return nil
}
