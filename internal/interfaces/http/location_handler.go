package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tradenest-api/internal/application/catalog"
	"github.com/jhoicas/tradenest-api/internal/application/dto"
)

// LocationHandler registro de identidad de bodegas y puntos de venta.
type LocationHandler struct {
	uc *catalog.LocationUseCase
}

// NewLocationHandler construye el handler.
func NewLocationHandler(uc *catalog.LocationUseCase) *LocationHandler {
	return &LocationHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar ubicación
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterLocationRequest  true  "kind (warehouse|outlet), name, id opcional"
// @Success      201   {object}  dto.LocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/locations [post]
func (h *LocationHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener ubicación por ID
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [get]
func (h *LocationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
