package stock

import (
	"context"

	"github.com/verone/commerce-core/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el asiento del libro y la
// actualización del stock cacheado se confirmen o reviertan juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// EventPublisher publica eventos de dominio tras el commit (best-effort).
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}
