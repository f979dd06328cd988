package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pedidos-sync/internal/application/catalog"
	"github.com/jhoicas/Pedidos-sync/internal/application/stock"
	appsync "github.com/jhoicas/Pedidos-sync/internal/application/sync"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Pipeline     *appsync.Pipeline
	Orchestrator *appsync.Orchestrator
	Sweeper      *appsync.Sweeper
	Audit        *appsync.Audit
	Ledger       *stock.Ledger
	Directory    *catalog.Directory
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Pedidos (ingesta + consulta)
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.Pipeline)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/:external_id", orderHandler.GetOrder)

	// Clientes creados por la ingesta
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.Directory)
	customers.Get("/", customerHandler.ListCustomers)

	// Libro de inventario
	stockHandler := NewStockHandler(deps.Ledger)
	api.Post("/stock/moves", stockHandler.RecordMove)
	api.Get("/products/:id/stock", stockHandler.GetCurrentStock)
	api.Get("/products/:id/moves", stockHandler.ListMoves)

	// Sincronización y auditoría
	syncHandler := NewSyncHandler(deps.Orchestrator, deps.Sweeper, deps.Audit)
	api.Post("/sync/run", syncHandler.RunSync)
	api.Post("/retry/sweep", syncHandler.RunSweep)
	api.Get("/sync-logs", syncHandler.ListSyncLogs)
	api.Get("/retry-queue", syncHandler.ListRetryQueue)
}
