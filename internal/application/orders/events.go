package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/verone/commerce-core/internal/domain/entity"
)

// Tipos de evento publicados al broker tras el commit.
const (
	EventOrderShipped = "order.shipped"
	EventOrderClosed  = "order.closed"
	EventOrderSettled = "order.settled"
)

// BaseEvent campos comunes de todo evento de dominio.
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

func newBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// OrderShippedEvent se emite al registrar un envío (parcial o total).
type OrderShippedEvent struct {
	BaseEvent
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	ShipmentID    string          `json:"shipment_id"`
	Status        string          `json:"status"`
	CompletionPct decimal.Decimal `json:"completion_pct"`
}

func newOrderShippedEvent(o *entity.SalesOrder, shipmentID string) OrderShippedEvent {
	return OrderShippedEvent{
		BaseEvent:     newBaseEvent(EventOrderShipped),
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		ShipmentID:    shipmentID,
		Status:        o.Status,
		CompletionPct: o.CompletionPct,
	}
}

// OrderClosedEvent se emite al cerrar una orden, con el remanente exonerado.
type OrderClosedEvent struct {
	BaseEvent
	OrderID         string `json:"order_id"`
	OrderNumber     string `json:"order_number"`
	WaivedRemainder bool   `json:"waived_remainder"`
}

func newOrderClosedEvent(o *entity.SalesOrder, waived bool) OrderClosedEvent {
	return OrderClosedEvent{
		BaseEvent:       newBaseEvent(EventOrderClosed),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		WaivedRemainder: waived,
	}
}

// OrderSettledEvent se emite al congelar la liquidación de comisiones.
type OrderSettledEvent struct {
	BaseEvent
	OrderID         string          `json:"order_id"`
	OrderNumber     string          `json:"order_number"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	AffiliateAmount decimal.Decimal `json:"affiliate_amount"`
	PlatformAmount  decimal.Decimal `json:"platform_amount"`
	Currency        string          `json:"currency"`
}

func newOrderSettledEvent(o *entity.SalesOrder, rec *entity.CommissionRecord) OrderSettledEvent {
	return OrderSettledEvent{
		BaseEvent:       newBaseEvent(EventOrderSettled),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		SellingPrice:    rec.SellingPrice,
		AffiliateAmount: rec.AffiliateAmount,
		PlatformAmount:  rec.PlatformAmount,
		Currency:        rec.Currency,
	}
}
