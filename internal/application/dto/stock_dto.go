package dto

import "time"

// RegisterMovementRequest entrada del endpoint de ajuste manual de stock.
// Quantity es el delta con signo: positivo para IN, negativo para OUT;
// ADJUST admite ambos signos (nunca puede dejar el stock en negativo).
type RegisterMovementRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"movement_type"` // IN, OUT, ADJUST
	Quantity  int64  `json:"quantity_change"`
	Notes     string `json:"notes"`
}

// MovementResponse asiento del libro de inventario en respuestas.
type MovementResponse struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	Type             string    `json:"movement_type"`
	QuantityChange   int64     `json:"quantity_change"`
	QuantityBefore   int64     `json:"quantity_before"`
	QuantityAfter    int64     `json:"quantity_after"`
	PerformedAt      time.Time `json:"performed_at"`
	PerformedBy      string    `json:"performed_by"`
	LinkedShipmentID *string   `json:"linked_shipment_id,omitempty"`
	Notes            string    `json:"notes,omitempty"`
}

// BlockedOrderDTO orden bloqueada por falta de stock (demanda más antigua primero).
type BlockedOrderDTO struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Quantity    int64  `json:"quantity"`
}

// StockAlertDTO alerta derivada de stock. Los campos *_in_draft marcan que
// una compra abierta ya cubre el faltante; la alerta sigue activa igualmente.
type StockAlertDTO struct {
	ProductID     string            `json:"product_id"`
	SKU           string            `json:"sku"`
	ProductName   string            `json:"product_name"`
	AlertType     string            `json:"alert_type"`
	Severity      string            `json:"severity"`
	CurrentStock  int64             `json:"stock_real"`
	MinStock      int64             `json:"min_stock"`
	ShortageQty   int64             `json:"shortage_quantity"`
	BlockedOrders []BlockedOrderDTO `json:"blocked_orders,omitempty"`

	IsInDraft        bool   `json:"is_in_draft"`
	QuantityInDraft  int64  `json:"quantity_in_draft,omitempty"`
	DraftOrderID     string `json:"draft_order_id,omitempty"`
	DraftOrderNumber string `json:"draft_order_number,omitempty"`
}
