package orders

import (
	"context"
	"time"

	"github.com/verone/commerce-core/internal/domain/repository"
)

// TxRunner ejecuta funciones dentro de una transacción de BD, pasando
// repositorios atados a esa tx. RunOrder cubre el reconciliador de envíos y
// las transiciones de estado (orden + envíos + libro de inventario en una
// sola transacción); RunSettlement cubre la liquidación de comisiones.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.SalesOrderRepository,
		shipmentRepo repository.ShipmentRepository,
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error) error

	RunSettlement(ctx context.Context, fn func(
		orderRepo repository.SalesOrderRepository,
		commissionRepo repository.CommissionRecordRepository,
	) error) error
}

// EventPublisher publica eventos de dominio tras el commit (Kafka en
// producción). La publicación es best-effort: un fallo se loguea y no
// revierte la transacción ya confirmada.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// IdempotencyStore es el atajo de deduplicación por request id (Redis).
// Solo acelera la respuesta a reintentos evidentes; la garantía real es la
// restricción UNIQUE sobre shipments.request_id.
type IdempotencyStore interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string, ttl time.Duration) error
}
