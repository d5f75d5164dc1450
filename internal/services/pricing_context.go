package services

import "grosir/internal/models"

// lineContext builds the pricing context for a material sold to a store. Cart
// refresh and checkout both use it so that the two agree on every line.
// Category is left out: only category-agnostic rules apply to lines.
func lineContext(storeID string, material models.Material) models.PricingContext {
	return models.PricingContext{
		StoreID:    optional(storeID),
		SupplierID: optional(material.SupplierID),
		MaterialID: optional(material.ID),
	}
}

// optional maps the empty string to an absent dimension.
func optional(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func normalizeOptional(id *string) *string {
	if id == nil {
		return nil
	}
	return optional(*id)
}
