package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/verone/commerce-core/internal/application/orders"
	"github.com/verone/commerce-core/internal/application/pricing"
	"github.com/verone/commerce-core/internal/application/stock"
	"github.com/verone/commerce-core/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC  *stock.LedgerUseCase
	AlertsUC  *stock.AlertsUseCase
	OrderUC   *orders.OrderUseCase
	PricingUC *pricing.QuoteUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todo el dominio va protegido con
// Bearer Token; /health y /metrics se registran fuera, en main.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	api.Use(observeLatency)

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Libro de inventario y alertas
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.LedgerUC, deps.AlertsUC)
	stockGroup.Post("/movements", stockHandler.RegisterMovement)
	stockGroup.Get("/movements", stockHandler.ListMovements)
	stockGroup.Delete("/movements/:id", stockHandler.CancelMovement)
	stockGroup.Get("/alerts", stockHandler.GetAlerts)

	// Órdenes de venta
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Post("/:id/confirm", orderHandler.Confirm)
	ordersGroup.Post("/:id/shipments", orderHandler.CreateShipment)
	ordersGroup.Post("/:id/close", orderHandler.Close)
	ordersGroup.Post("/:id/cancel", orderHandler.Cancel)
	ordersGroup.Post("/:id/deliver", orderHandler.MarkDelivered)
	ordersGroup.Post("/:id/settle", orderHandler.Settle)

	// Precios y comisiones
	pricingGroup := protected.Group("/pricing")
	pricingHandler := NewPricingHandler(deps.PricingUC)
	pricingGroup.Get("/quote", pricingHandler.Quote)
}

// observeLatency registra la latencia de cada petición por método, ruta y
// código de estado.
func observeLatency(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	metrics.HTTPRequestDuration.
		WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(c.Response().StatusCode())).
		Observe(time.Since(start).Seconds())
	return err
}
