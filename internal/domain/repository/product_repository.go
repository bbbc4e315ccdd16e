package repository

import "github.com/verone/commerce-core/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetForUpdate bloquea la fila (SELECT FOR UPDATE): toda mutación del stock
// cacheado pasa por ese bloqueo dentro de la misma transacción del asiento.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetForUpdate(id string) (*entity.Product, error)
	UpdateOnHand(productID string, quantity int64) error
	ListForAlerts(companyID string, productIDs []string) ([]*entity.Product, error)
}
