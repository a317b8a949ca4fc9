package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tradenest-api/internal/application/dto"
	"github.com/jhoicas/tradenest-api/internal/application/inventory"
)

// StockHandler consultas del libro de stock y descuento POS (protegido).
type StockHandler struct {
	ledger   *inventory.Ledger
	lowStock *inventory.LowStockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *inventory.Ledger, lowStock *inventory.LowStockUseCase) *StockHandler {
	return &StockHandler{ledger: ledger, lowStock: lowStock}
}

// GetBalance godoc
// @Summary      Saldo de un producto en una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   path  string  true  "Producto"
// @Param        location_id  path  string  true  "Ubicación"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/balances/{product_id}/{location_id} [get]
func (h *StockHandler) GetBalance(c *fiber.Ctx) error {
	out, err := h.ledger.Balance(c.UserContext(), c.Params("product_id"), c.Params("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Diario de movimientos de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  false  "Producto"
// @Param        location_id  query  string  false  "Ubicación"
// @Param        reference    query  string  false  "Traslado, retención o venta"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	out, err := h.ledger.Movements(c.UserContext(), dto.MovementListRequest{
		PageRequest: pageFromQuery(c),
		ProductID:   c.Query("product_id"),
		LocationID:  c.Query("location_id"),
		Reference:   c.Query("reference"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetLowStock godoc
// @Summary      Alertas de stock bajo
// @Description  Productos con disponible en o bajo su umbral, con la cantidad sugerida de reposición.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación. Vacío = todas."
// @Success      200  {array}   dto.LowStockSuggestionDTO
// @Router       /api/stock/low-stock [get]
func (h *StockHandler) GetLowStock(c *fiber.Ctx) error {
	out, err := h.lowStock.GenerateLowStockList(c.UserContext(), c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		out = []dto.LowStockSuggestionDTO{}
	}
	return c.JSON(out)
}

// RegisterSale godoc
// @Summary      Descuento de stock por venta POS
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleDebitRequest  true  "product_id, location_id, quantity, reference"
// @Success      201   {object}  dto.BalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/sales [post]
func (h *StockHandler) RegisterSale(c *fiber.Ctx) error {
	var in dto.SaleDebitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.Debit(c.UserContext(), in, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
