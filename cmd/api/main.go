package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/verone/commerce-core/internal/application/orders"
	apppricing "github.com/verone/commerce-core/internal/application/pricing"
	"github.com/verone/commerce-core/internal/application/stock"
	"github.com/verone/commerce-core/internal/domain/pricing"
	"github.com/verone/commerce-core/internal/infrastructure/broker"
	"github.com/verone/commerce-core/internal/infrastructure/postgres"
	"github.com/verone/commerce-core/internal/infrastructure/redisclient"
	httpRouter "github.com/verone/commerce-core/internal/interfaces/http"
	"github.com/verone/commerce-core/pkg/config"
	"github.com/verone/commerce-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	orderRepo := postgres.NewSalesOrderRepository(pool)
	shipmentRepo := postgres.NewShipmentRepository(pool)
	purchaseRepo := postgres.NewPurchaseOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Atajo de idempotencia — opcional: la garantía real es el UNIQUE de
	// request_id en BD; Redis solo evita abrir transacción en el replay.
	var idem orders.IdempotencyStore
	if cfg.Redis.Enabled() {
		redisClient, err := redisclient.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		idem = redisClient
		log.Info().Str("addr", cfg.Redis.Addr).Msg("atajo de idempotencia en Redis habilitado")
	}

	// Publicación de eventos de dominio — opcional y best-effort post-commit.
	var publisher orders.EventPublisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher := broker.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("publicación de eventos en Kafka habilitada")
	}

	calc := pricing.NewCalculator(cfg.Pricing.RoundingPrecision)

	ledgerUC := stock.NewLedgerUseCase(txRunner, productRepo, movementRepo, publisher, log)
	alertsUC := stock.NewAlertsUseCase(productRepo, orderRepo, purchaseRepo, cfg.Stock.DefaultMinThreshold)
	orderUC := orders.NewOrderUseCase(
		txRunner, orderRepo, productRepo, shipmentRepo,
		calc, decimal.NewFromFloat(cfg.Pricing.VATRatePercent),
		publisher, idem, log,
	)
	quoteUC := apppricing.NewQuoteUseCase(calc, decimal.NewFromFloat(cfg.Pricing.DefaultCommissionRate))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Commerce Core API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:  ledgerUC,
		AlertsUC:  alertsUC,
		OrderUC:   orderUC,
		PricingUC: quoteUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
