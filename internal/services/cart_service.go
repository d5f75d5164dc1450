package services

import (
	"context"
	"fmt"

	"grosir/internal/clock"
	"grosir/internal/models"
	"grosir/internal/pricing"
	"grosir/internal/repositories"
)

// CartService refreshes the displayed prices of a cart. The cart itself is
// held by the caller.
type CartService struct {
	materials repositories.MaterialRepository
	engine    *pricing.Engine
	clock     clock.Clock
}

// NewCartService creates a new CartService.
func NewCartService(materials repositories.MaterialRepository, engine *pricing.Engine, clk clock.Clock) *CartService {
	if clk == nil {
		clk = clock.New()
	}
	return &CartService{
		materials: materials,
		engine:    engine,
		clock:     clk,
	}
}

// RefreshPrices prices every line at the material's current supplier price.
// All lines are priced at the same instant.
func (s *CartService) RefreshPrices(ctx context.Context, req models.CartQuoteRequest) ([]models.CartLineQuote, error) {
	asOf := s.clock.Now()
	quotes := make([]models.CartLineQuote, 0, len(req.Lines))

	for _, line := range req.Lines {
		material, err := s.materials.GetByID(ctx, line.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", line.MaterialID, err)
		}

		quote, err := s.engine.PriceWithMarkup(ctx, lineContext(req.StoreID, *material), material.Price, asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to price material %s: %w", line.MaterialID, err)
		}
		quotes = append(quotes, models.CartLineQuote{
			MaterialID: line.MaterialID,
			Quantity:   line.Quantity,
			Quote:      *quote,
		})
	}
	return quotes, nil
}
