package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de una orden nueva.
type OrderItemRequest struct {
	ProductID   string          `json:"product_id"`
	Quantity    int64           `json:"quantity"`
	UnitPriceHT decimal.Decimal `json:"unit_price_ht"`
}

// CreateOrderRequest crea una orden en draft. MarginRate y CommissionRate
// solo aplican a órdenes del canal de afiliados (LinkMe).
type CreateOrderRequest struct {
	OrderNumber    string             `json:"order_number,omitempty"` // vacío = generado
	Currency       string             `json:"currency"`
	MarginRate     *decimal.Decimal   `json:"margin_rate,omitempty"`
	CommissionRate *decimal.Decimal   `json:"commission_rate,omitempty"`
	Items          []OrderItemRequest `json:"items"`
}

// ShipmentLineRequest línea de un envío: cantidad a despachar de un producto.
type ShipmentLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// CreateShipmentRequest registra un envío parcial o total contra una orden.
// RequestID deduplica reintentos tras timeout (vacío = generado, sin
// garantía de idempotencia para el cliente).
type CreateShipmentRequest struct {
	RequestID      string                `json:"request_id,omitempty"`
	TrackingNumber string                `json:"tracking_number,omitempty"`
	Lines          []ShipmentLineRequest `json:"lines"`
}

// CloseOrderRequest cierre con o sin exoneración del remanente.
type CloseOrderRequest struct {
	WaiveRemainder bool `json:"waive_remainder"`
}

// OrderItemResponse línea de orden en respuestas.
type OrderItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Quantity        int64           `json:"quantity"`
	QuantityShipped int64           `json:"quantity_shipped"`
	WaivedQuantity  int64           `json:"waived_quantity,omitempty"`
	RemainingToShip int64           `json:"remaining_to_ship"`
	UnitPriceHT     decimal.Decimal `json:"unit_price_ht"`
}

// OrderResponse orden de venta completa.
type OrderResponse struct {
	ID             string              `json:"id"`
	OrderNumber    string              `json:"order_number"`
	Status         string              `json:"status"`
	Currency       string              `json:"currency"`
	TotalHT        decimal.Decimal     `json:"total_ht"`
	TotalTTC       decimal.Decimal     `json:"total_ttc"`
	MarginRate     *decimal.Decimal    `json:"margin_rate,omitempty"`
	CommissionRate *decimal.Decimal    `json:"commission_rate,omitempty"`
	CompletionPct  decimal.Decimal     `json:"completion_pct"`
	Items          []OrderItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
	ConfirmedAt    *time.Time          `json:"confirmed_at,omitempty"`
	ShippedAt      *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time          `json:"cancelled_at,omitempty"`
}

// ShipmentItemResponse línea de envío en respuestas.
type ShipmentItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// ShipmentResponse envío registrado.
type ShipmentResponse struct {
	ID             string                 `json:"id"`
	OrderID        string                 `json:"order_id"`
	OrderStatus    string                 `json:"order_status"`
	RequestID      string                 `json:"request_id"`
	TrackingNumber string                 `json:"tracking_number,omitempty"`
	ShippedAt      time.Time              `json:"shipped_at"`
	Items          []ShipmentItemResponse `json:"items"`
}

// CommissionRecordResponse liquidación congelada de una orden de afiliado.
type CommissionRecordResponse struct {
	ID              string          `json:"id"`
	OrderID         string          `json:"order_id"`
	BasePrice       decimal.Decimal `json:"base_price"`
	MarginRate      decimal.Decimal `json:"margin_rate"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	AffiliateAmount decimal.Decimal `json:"affiliate_amount"`
	PlatformAmount  decimal.Decimal `json:"platform_amount"`
	Currency        string          `json:"currency"`
	RoundingMode    string          `json:"rounding_mode"`
	CreatedAt       time.Time       `json:"created_at"`
}
