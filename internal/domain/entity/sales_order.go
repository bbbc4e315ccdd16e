package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una orden de venta.
// delivered y cancelled son terminales.
const (
	OrderStatusDraft            = "draft"
	OrderStatusConfirmed        = "confirmed"
	OrderStatusPartiallyShipped = "partially_shipped"
	OrderStatusShipped          = "shipped"
	OrderStatusDelivered        = "delivered"
	OrderStatusCancelled        = "cancelled"
)

// SalesOrder representa una orden de venta. OrderNumber es único e inmutable
// una vez asignado. MarginRate y CommissionRate solo existen en órdenes del
// canal de afiliados (LinkMe) y alimentan la liquidación de comisiones.
type SalesOrder struct {
	ID             string
	CompanyID      string
	OrderNumber    string
	Status         string
	Currency       string
	TotalHT        decimal.Decimal // base sin impuestos
	TotalTTC       decimal.Decimal // con impuestos
	MarginRate     *decimal.Decimal
	CommissionRate *decimal.Decimal
	CompletionPct  decimal.Decimal // % de cantidades enviadas sobre pedidas

	Items []*SalesOrderItem

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	ConfirmedBy string
	ShippedAt   *time.Time
	ShippedBy   string
	DeliveredAt *time.Time
	DeliveredBy string
	CancelledAt *time.Time
}

// SalesOrderItem es una línea de la orden. QuantityShipped nunca supera
// Quantity; WaivedQuantity registra el remanente exonerado al cerrar la orden
// (auditoría, no se borra).
type SalesOrderItem struct {
	ID              string
	OrderID         string
	ProductID       string
	Quantity        int64
	QuantityShipped int64
	WaivedQuantity  int64
	UnitPriceHT     decimal.Decimal
}

// RemainingToShip devuelve la cantidad pendiente por enviar de la línea.
func (i *SalesOrderItem) RemainingToShip() int64 {
	r := i.Quantity - i.QuantityShipped - i.WaivedQuantity
	if r < 0 {
		return 0
	}
	return r
}

// RemainingToShip devuelve el total pendiente por enviar de la orden.
func (o *SalesOrder) RemainingToShip() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.RemainingToShip()
	}
	return total
}

// FullyShipped indica si todas las líneas están completamente enviadas
// (sin contar remanentes exonerados).
func (o *SalesOrder) FullyShipped() bool {
	for _, it := range o.Items {
		if it.QuantityShipped+it.WaivedQuantity < it.Quantity {
			return false
		}
	}
	return true
}

// HasShipment indica si la orden ya tiene cantidades enviadas.
func (o *SalesOrder) HasShipment() bool {
	for _, it := range o.Items {
		if it.QuantityShipped > 0 {
			return true
		}
	}
	return false
}

// Completion calcula el % de avance: cantidades enviadas sobre pedidas,
// redondeado a un decimal.
func (o *SalesOrder) Completion() decimal.Decimal {
	var ordered, shipped int64
	for _, it := range o.Items {
		ordered += it.Quantity
		shipped += it.QuantityShipped
	}
	if ordered == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(shipped).
		Div(decimal.NewFromInt(ordered)).
		Mul(decimal.NewFromInt(100)).
		Round(1)
}

// IsTerminal indica si el estado ya no admite transiciones.
func (o *SalesOrder) IsTerminal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}
