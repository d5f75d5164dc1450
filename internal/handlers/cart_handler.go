package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"grosir/internal/models"
	"grosir/internal/services"
)

// CartHandler serves cart price refreshes.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	log      *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, log *zap.Logger) *CartHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		log:      log.Named("handlers.cart"),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Post("/quote", h.HandleQuote)
}

// HandleQuote prices the supplied cart lines at current prices.
func (h *CartHandler) HandleQuote(c *fiber.Ctx) error {
	var req models.CartQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return invalidRequest(c, err)
	}

	quotes, err := h.service.RefreshPrices(c.UserContext(), req)
	if err != nil {
		h.log.Error("error quoting cart", zap.String("store_id", req.StoreID), zap.Error(err))
		return serviceError(c, "Could not price cart", err)
	}
	return c.JSON(fiber.Map{
		"store_id": req.StoreID,
		"lines":    quotes,
	})
}
