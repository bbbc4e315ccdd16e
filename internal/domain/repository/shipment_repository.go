package repository

import "github.com/verone/commerce-core/internal/domain/entity"

// ShipmentRepository define el puerto de persistencia para envíos.
// Los envíos son inmutables una vez creados; GetByRequestID soporta la
// deduplicación transaccional por request id (reintentos tras timeout).
type ShipmentRepository interface {
	Create(shipment *entity.Shipment) error
	GetByID(id string) (*entity.Shipment, error)
	GetByRequestID(requestID string) (*entity.Shipment, error)
	ExistsForOrder(orderID string) (bool, error)
}
