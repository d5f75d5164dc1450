package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"grosir/internal/models"
	"grosir/internal/services"
)

// MarkupRuleHandler handles HTTP requests for markup rule administration and
// price simulation.
type MarkupRuleHandler struct {
	service *services.MarkupRuleService
	log     *zap.Logger
}

// NewMarkupRuleHandler creates a new MarkupRuleHandler.
func NewMarkupRuleHandler(service *services.MarkupRuleService, log *zap.Logger) *MarkupRuleHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MarkupRuleHandler{
		service: service,
		log:     log.Named("handlers.markup_rule"),
	}
}

// RegisterRoutes registers the markup rule routes with the Fiber app.
func (h *MarkupRuleHandler) RegisterRoutes(router fiber.Router) {
	ruleRoutes := router.Group("/markup-rules")
	ruleRoutes.Get("/", h.HandleGetRules)
	ruleRoutes.Post("/", h.HandleCreateRule)
	// static paths before /:id
	ruleRoutes.Get("/active", h.HandleGetActiveRules)
	ruleRoutes.Post("/simulate", h.HandleSimulate)
	ruleRoutes.Get("/:id", h.HandleGetRuleByID)
	ruleRoutes.Put("/:id", h.HandleUpdateRule)
	ruleRoutes.Delete("/:id", h.HandleDeleteRule)
	ruleRoutes.Patch("/:id/active", h.HandleSetRuleActive)
}

// markupRuleRequest is the create/update payload. IsActive defaults to true.
type markupRuleRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	StoreID     *string           `json:"store_id"`
	SupplierID  *string           `json:"supplier_id"`
	CategoryID  *string           `json:"category_id"`
	MaterialID  *string           `json:"material_id"`
	MarkupType  models.MarkupType `json:"markup_type"`
	MarkupValue decimal.Decimal   `json:"markup_value"`
	MinMarkup   *decimal.Decimal  `json:"min_markup"`
	MaxMarkup   *decimal.Decimal  `json:"max_markup"`
	Priority    int               `json:"priority"`
	IsActive    *bool             `json:"is_active"`
	StartTime   *time.Time        `json:"start_time"`
	EndTime     *time.Time        `json:"end_time"`
	CreatedBy   string            `json:"created_by"`
}

func (r markupRuleRequest) toModel(id string) models.MarkupRule {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return models.MarkupRule{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		StoreID:     r.StoreID,
		SupplierID:  r.SupplierID,
		CategoryID:  r.CategoryID,
		MaterialID:  r.MaterialID,
		MarkupType:  r.MarkupType,
		MarkupValue: r.MarkupValue,
		MinMarkup:   r.MinMarkup,
		MaxMarkup:   r.MaxMarkup,
		Priority:    r.Priority,
		IsActive:    active,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		CreatedBy:   r.CreatedBy,
	}
}

// HandleGetRules lists every rule, enabled or not.
func (h *MarkupRuleHandler) HandleGetRules(c *fiber.Ctx) error {
	rules, err := h.service.ListRules(c.UserContext())
	if err != nil {
		h.log.Error("error listing markup rules", zap.Error(err))
		return serviceError(c, "Could not retrieve markup rules", err)
	}
	return c.JSON(rules)
}

// HandleGetActiveRules lists the rules in effect at ?as_of, or now.
func (h *MarkupRuleHandler) HandleGetActiveRules(c *fiber.Ctx) error {
	asOf, err := parseAsOf(c)
	if err != nil {
		return badRequest(c, "Invalid as_of parameter", err)
	}
	rules, err := h.service.ListActiveRules(c.UserContext(), asOf)
	if err != nil {
		h.log.Error("error listing active markup rules", zap.Error(err))
		return serviceError(c, "Could not retrieve active markup rules", err)
	}
	return c.JSON(rules)
}

// HandleGetRuleByID retrieves a single rule.
func (h *MarkupRuleHandler) HandleGetRuleByID(c *fiber.Ctx) error {
	ruleID := c.Params("id")
	rule, err := h.service.GetRule(c.UserContext(), ruleID)
	if err != nil {
		return serviceError(c, fmt.Sprintf("Could not retrieve markup rule %s", ruleID), err)
	}
	return c.JSON(rule)
}

// HandleCreateRule creates a new rule.
func (h *MarkupRuleHandler) HandleCreateRule(c *fiber.Ctx) error {
	var req markupRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	rule := req.toModel("")
	if err := h.service.CreateRule(c.UserContext(), &rule); err != nil {
		if !errors.Is(err, services.ErrInvalidRule) {
			h.log.Error("error creating markup rule", zap.Error(err))
		}
		return serviceError(c, "Could not create markup rule", err)
	}
	return c.Status(fiber.StatusCreated).JSON(rule)
}

// HandleUpdateRule replaces an existing rule.
func (h *MarkupRuleHandler) HandleUpdateRule(c *fiber.Ctx) error {
	ruleID := c.Params("id")
	var req markupRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	rule := req.toModel(ruleID)
	if err := h.service.UpdateRule(c.UserContext(), &rule); err != nil {
		return serviceError(c, fmt.Sprintf("Could not update markup rule %s", ruleID), err)
	}

	updated, err := h.service.GetRule(c.UserContext(), ruleID)
	if err != nil {
		return serviceError(c, fmt.Sprintf("Could not retrieve markup rule %s", ruleID), err)
	}
	return c.JSON(updated)
}

// HandleSetRuleActive enables or disables a rule.
func (h *MarkupRuleHandler) HandleSetRuleActive(c *fiber.Ctx) error {
	ruleID := c.Params("id")
	var body struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if body.IsActive == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "is_active is required",
		})
	}

	if err := h.service.SetRuleActive(c.UserContext(), ruleID, *body.IsActive); err != nil {
		return serviceError(c, fmt.Sprintf("Could not update markup rule %s", ruleID), err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Markup rule %s active set to %t", ruleID, *body.IsActive),
	})
}

// HandleDeleteRule deletes a rule.
func (h *MarkupRuleHandler) HandleDeleteRule(c *fiber.Ctx) error {
	ruleID := c.Params("id")
	if err := h.service.DeleteRule(c.UserContext(), ruleID); err != nil {
		return serviceError(c, fmt.Sprintf("Could not delete markup rule %s", ruleID), err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Markup rule %s deleted successfully", ruleID),
	})
}

// simulateRequest is an administrator's what-if pricing query.
type simulateRequest struct {
	models.PricingContext
	BasePrice *decimal.Decimal `json:"base_price"`
	AsOf      *time.Time       `json:"as_of"`
}

// HandleSimulate previews the quote a context and base price would get.
func (h *MarkupRuleHandler) HandleSimulate(c *fiber.Ctx) error {
	var req simulateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if req.BasePrice == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "base_price is required",
		})
	}

	quote, err := h.service.Simulate(c.UserContext(), req.PricingContext, *req.BasePrice, req.AsOf)
	if err != nil {
		h.log.Error("error simulating markup", zap.Error(err))
		return serviceError(c, "Could not simulate price", err)
	}
	return c.JSON(quote)
}
