package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/verone/commerce-core/internal/domain/entity"
)

// EventMovementRecorded tipo del evento emitido al confirmar un asiento manual.
const EventMovementRecorded = "stock.movement_recorded"

// MovementRecordedEvent payload del evento de asiento registrado.
type MovementRecordedEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	Timestamp      time.Time `json:"timestamp"`
	MovementID     string    `json:"movement_id"`
	ProductID      string    `json:"product_id"`
	MovementType   string    `json:"movement_type"`
	QuantityChange int64     `json:"quantity_change"`
	QuantityAfter  int64     `json:"quantity_after"`
}

func newMovementRecordedEvent(m *entity.StockMovement) MovementRecordedEvent {
	return MovementRecordedEvent{
		EventID:        uuid.New().String(),
		EventType:      EventMovementRecorded,
		Timestamp:      time.Now().UTC(),
		MovementID:     m.ID,
		ProductID:      m.ProductID,
		MovementType:   m.Type,
		QuantityChange: m.QuantityChange,
		QuantityAfter:  m.QuantityAfter,
	}
}
