package repository

import "github.com/verone/commerce-core/internal/domain/entity"

// StockMovementRepository define el puerto del libro de inventario.
// Los asientos son inmutables: no hay Update. Delete existe únicamente para
// la cancelación directa del asiento MÁS RECIENTE de un producto; cualquier
// corrección anterior se modela con un movimiento compensatorio nuevo.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	// LatestIDForProduct devuelve el id del último asiento del producto
	// ("" si no hay ninguno).
	LatestIDForProduct(productID string) (string, error)
	Delete(id string) error
	ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error)
}
