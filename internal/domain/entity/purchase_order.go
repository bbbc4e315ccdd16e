package entity

import "time"

// Estados de una orden de compra a proveedor (lado de lectura: el editor de
// compras vive fuera de este servicio; aquí solo se consulta la cobertura
// abierta para el tracking de alertas).
const (
	PurchaseOrderStatusDraft     = "draft"
	PurchaseOrderStatusConfirmed = "confirmed"
	PurchaseOrderStatusReceived  = "received"
	PurchaseOrderStatusCancelled = "cancelled"
)

// PurchaseOrderCoverage es la cantidad de un producto pendiente de recibir en
// órdenes de compra abiertas (draft o confirmed, no recibidas).
type PurchaseOrderCoverage struct {
	ProductID   string
	OrderID     string
	OrderNumber string
	Quantity    int64
	IsDraft     bool
	CreatedAt   time.Time
}
