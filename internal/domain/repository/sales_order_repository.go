package repository

import (
	"time"

	"github.com/verone/commerce-core/internal/domain/entity"
)

// OpenDemand es la demanda abierta de un producto: una orden confirmada o
// parcialmente enviada con cantidad pendiente, ordenada por creación
// ascendente (demanda más antigua primero).
type OpenDemand struct {
	ProductID   string
	OrderID     string
	OrderNumber string
	Remaining   int64
	CreatedAt   time.Time
}

// SalesOrderRepository define el puerto de persistencia para órdenes de venta.
// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) y carga las líneas:
// dos envíos concurrentes sobre la misma orden se serializan ahí, de modo que
// nunca despachan juntos más de lo pedido.
type SalesOrderRepository interface {
	Create(order *entity.SalesOrder) error
	GetByID(id string) (*entity.SalesOrder, error)
	GetForUpdate(id string) (*entity.SalesOrder, error)
	// UpdateStatus persiste estado + campos derivados (avance, timestamps
	// de ciclo de vida) en una sola escritura.
	UpdateStatus(order *entity.SalesOrder) error
	// UpdateItemShipment persiste cantidades enviadas/exoneradas de una línea.
	UpdateItemShipment(itemID string, quantityShipped, waivedQuantity int64) error
	// OpenDemandByProduct lista la demanda abierta, opcionalmente filtrada
	// por productos, ordenada por fecha de creación de la orden ascendente.
	OpenDemandByProduct(companyID string, productIDs []string) ([]OpenDemand, error)
}
