package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"grosir/internal/models"
	"grosir/internal/services"
)

// MaterialHandler handles HTTP requests for materials.
type MaterialHandler struct {
	service  *services.MaterialService
	validate *validator.Validate
	log      *zap.Logger
}

// NewMaterialHandler creates a new MaterialHandler.
func NewMaterialHandler(service *services.MaterialService, log *zap.Logger) *MaterialHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MaterialHandler{
		service:  service,
		validate: validator.New(),
		log:      log.Named("handlers.material"),
	}
}

// RegisterRoutes registers the material routes with the Fiber app.
func (h *MaterialHandler) RegisterRoutes(router fiber.Router) {
	materialRoutes := router.Group("/materials")
	materialRoutes.Get("/", h.HandleGetMaterials)
	materialRoutes.Get("/:id", h.HandleGetMaterialByID)
	materialRoutes.Post("/", h.HandleCreateMaterial)
	materialRoutes.Put("/:id", h.HandleUpdateMaterial)
	materialRoutes.Delete("/:id", h.HandleDeleteMaterial)
}

// HandleGetMaterials retrieves all materials.
func (h *MaterialHandler) HandleGetMaterials(c *fiber.Ctx) error {
	materials, err := h.service.GetAllMaterials(c.UserContext())
	if err != nil {
		h.log.Error("error getting all materials", zap.Error(err))
		return serviceError(c, "Could not retrieve materials", err)
	}
	return c.JSON(materials)
}

// HandleGetMaterialByID retrieves a single material by its ID.
func (h *MaterialHandler) HandleGetMaterialByID(c *fiber.Ctx) error {
	materialID := c.Params("id")
	material, err := h.service.GetMaterialByID(c.UserContext(), materialID)
	if err != nil {
		return serviceError(c, fmt.Sprintf("Could not retrieve material %s", materialID), err)
	}
	return c.JSON(material)
}

// HandleCreateMaterial creates a new material.
func (h *MaterialHandler) HandleCreateMaterial(c *fiber.Ctx) error {
	var material models.Material
	if err := c.BodyParser(&material); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	material.ID = ""
	if err := h.validate.Struct(material); err != nil {
		return invalidRequest(c, err)
	}

	if err := h.service.CreateMaterial(c.UserContext(), &material); err != nil {
		h.log.Error("error creating material", zap.Error(err))
		return serviceError(c, "Could not create material", err)
	}
	return c.Status(fiber.StatusCreated).JSON(material)
}

// HandleUpdateMaterial updates an existing material.
func (h *MaterialHandler) HandleUpdateMaterial(c *fiber.Ctx) error {
	materialID := c.Params("id")
	var material models.Material
	if err := c.BodyParser(&material); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	material.ID = materialID
	if err := h.validate.StructExcept(material, "ID"); err != nil {
		return invalidRequest(c, err)
	}

	if err := h.service.UpdateMaterial(c.UserContext(), &material); err != nil {
		return serviceError(c, fmt.Sprintf("Could not update material %s", materialID), err)
	}
	updated, err := h.service.GetMaterialByID(c.UserContext(), materialID)
	if err != nil {
		return serviceError(c, fmt.Sprintf("Could not retrieve material %s", materialID), err)
	}
	return c.JSON(updated)
}

// HandleDeleteMaterial deletes a material by its ID.
func (h *MaterialHandler) HandleDeleteMaterial(c *fiber.Ctx) error {
	materialID := c.Params("id")
	if err := h.service.DeleteMaterial(c.UserContext(), materialID); err != nil {
		return serviceError(c, fmt.Sprintf("Could not delete material %s", materialID), err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Material %s deleted successfully", materialID),
	})
}
