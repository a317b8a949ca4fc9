package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tradenest-api/internal/application/catalog"
	"github.com/jhoicas/tradenest-api/internal/application/inventory"
	"github.com/jhoicas/tradenest-api/internal/application/transfer"
	"github.com/jhoicas/tradenest-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LocationUC *catalog.LocationUseCase
	ProductUC  *catalog.ProductUseCase
	Ledger     *inventory.Ledger
	LowStockUC *inventory.LowStockUseCase
	TransferUC *transfer.UseCase
	WaybillUC  *transfer.WaybillUseCase
	JWTSecret  string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	approvers := RequireRole(jwt.RoleAdmin, jwt.RoleManager)

	// Locations (alta solo admin)
	locations := api.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Post("/", RequireRole(jwt.RoleAdmin), locationHandler.Register)
	locations.Get("/:id", locationHandler.GetByID)

	// Products (puerta de aprobación)
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Submit)
	products.Get("/", productHandler.List)
	products.Get("/pending", productHandler.ListPending)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/:id/approve", approvers, productHandler.Approve)
	products.Post("/:id/reject", approvers, productHandler.Reject)

	// Stock ledger
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Ledger, deps.LowStockUC)
	stock.Get("/balances/:product_id/:location_id", stockHandler.GetBalance)
	stock.Get("/movements", stockHandler.ListMovements)
	stock.Get("/low-stock", stockHandler.GetLowStock)
	stock.Post("/sales", stockHandler.RegisterSale)

	// Transfers
	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC, deps.WaybillUC)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Get("/:id/events", transferHandler.Events)
	transfers.Get("/:id/waybill", transferHandler.Waybill)
	transfers.Post("/:id/approve", approvers, transferHandler.Approve)
	transfers.Post("/:id/reject", approvers, transferHandler.Reject)
	transfers.Post("/:id/confirm", transferHandler.Confirm)
	transfers.Post("/:id/ship", transferHandler.Ship)
	transfers.Post("/:id/complete", transferHandler.Complete)
	transfers.Post("/:id/cancel", transferHandler.Cancel)
}
