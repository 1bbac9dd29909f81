package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC  *usecase.WarehouseUseCase
	ProductUC    *usecase.ProductUseCase
	StockCommand *inventory.CommandUseCase
}

// Router registra las rutas de la API. La autenticación corre por cuenta del gateway.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Warehouses
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseHandler.Update)
	warehouses.Delete("/:id", warehouseHandler.Delete)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Libro de stock: comandos y consultas
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.StockCommand)
	stock.Post("/add", stockHandler.AddStock)
	stock.Post("/decrease", stockHandler.DecreaseStock)
	stock.Post("/transfer", stockHandler.Transfer)
	stock.Get("/", stockHandler.GetRecord)
	stock.Delete("/", stockHandler.DeleteRecord)
	warehouses.Get("/:id/stock", stockHandler.ListByWarehouse)
}
