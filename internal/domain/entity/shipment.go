package entity

import "time"

// Shipment es un envío (total o parcial) contra una orden de venta.
// Inmutable una vez creado: corregir un error requiere un movimiento
// compensatorio en el libro de inventario, nunca mutar el envío.
// RequestID es el id de idempotencia aportado por el cliente; la restricción
// UNIQUE en BD evita el doble envío al reintentar tras un timeout.
type Shipment struct {
	ID             string
	OrderID        string
	RequestID      string
	TrackingNumber string
	ShippedAt      time.Time
	CreatedBy      string
	Items          []*ShipmentItem
}

// ShipmentItem es una línea del envío.
type ShipmentItem struct {
	ShipmentID string
	ProductID  string
	Quantity   int64
}
