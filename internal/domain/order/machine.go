package order

import (
	"fmt"
	"time"

	"github.com/verone/commerce-core/internal/domain"
	"github.com/verone/commerce-core/internal/domain/entity"
)

// Acciones sobre la máquina de estados de órdenes de venta.
const (
	ActionConfirm       = "confirm"
	ActionShip          = "ship" // resultado de registrar un envío
	ActionClose         = "close"
	ActionCancel        = "cancel"
	ActionMarkDelivered = "mark_delivered"
)

// transitions es la tabla explícita estado × acción → estado siguiente.
// Cualquier escritura de estado que no pase por una función de transición
// nombrada queda rechazada: no hay writes libres de status.
var transitions = map[string]map[string]string{
	entity.OrderStatusDraft: {
		ActionConfirm: entity.OrderStatusConfirmed,
		ActionCancel:  entity.OrderStatusCancelled,
	},
	entity.OrderStatusConfirmed: {
		ActionShip:   entity.OrderStatusPartiallyShipped, // o shipped si completa
		ActionClose:  entity.OrderStatusShipped,
		ActionCancel: entity.OrderStatusCancelled,
	},
	entity.OrderStatusPartiallyShipped: {
		ActionShip:  entity.OrderStatusPartiallyShipped,
		ActionClose: entity.OrderStatusShipped,
	},
	entity.OrderStatusShipped: {
		ActionMarkDelivered: entity.OrderStatusDelivered,
	},
}

// can valida que la acción esté permitida desde el estado actual.
func can(status, action string) bool {
	next, ok := transitions[status]
	if !ok {
		return false
	}
	_, ok = next[action]
	return ok
}

// Confirm pasa la orden de draft a confirmed.
func Confirm(o *entity.SalesOrder, actor string, now time.Time) error {
	if !can(o.Status, ActionConfirm) {
		return fmt.Errorf("%w: orden %s en estado %s no admite confirm", domain.ErrInvalidTransition, o.OrderNumber, o.Status)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: la orden %s no tiene líneas", domain.ErrInvalidInput, o.OrderNumber)
	}
	o.Status = entity.OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.ConfirmedBy = actor
	o.UpdatedAt = now
	return nil
}

// ApplyShipment recalcula estado y avance tras registrar un envío:
// shipped si toda línea quedó completa, partially_shipped si no.
// El llamador (reconciliador de envíos) ya validó cantidades y estado.
func ApplyShipment(o *entity.SalesOrder, actor string, now time.Time) error {
	if !can(o.Status, ActionShip) {
		return fmt.Errorf("%w: orden %s en estado %s no admite envíos", domain.ErrInvalidOrderState, o.OrderNumber, o.Status)
	}
	if o.FullyShipped() {
		o.Status = entity.OrderStatusShipped
	} else {
		o.Status = entity.OrderStatusPartiallyShipped
	}
	o.CompletionPct = o.Completion()
	o.ShippedAt = &now
	o.ShippedBy = actor
	o.UpdatedAt = now
	return nil
}

// Close cierra la orden desde confirmed o partially_shipped. Si queda
// pendiente por enviar y waiveRemainder es false falla; con waiver el
// remanente se registra como exonerado en cada línea (auditoría) y la orden
// pasa a shipped sin movimiento de inventario alguno.
func Close(o *entity.SalesOrder, waiveRemainder bool, actor string, now time.Time) error {
	if !can(o.Status, ActionClose) {
		return fmt.Errorf("%w: orden %s en estado %s no admite close", domain.ErrInvalidTransition, o.OrderNumber, o.Status)
	}
	remaining := o.RemainingToShip()
	if remaining > 0 && !waiveRemainder {
		return fmt.Errorf("%w: orden %s con %d unidades pendientes", domain.ErrCannotCloseWithRemainder, o.OrderNumber, remaining)
	}
	for _, it := range o.Items {
		if r := it.RemainingToShip(); r > 0 {
			it.WaivedQuantity += r
		}
	}
	o.Status = entity.OrderStatusShipped
	o.CompletionPct = o.Completion()
	o.ShippedAt = &now
	o.ShippedBy = actor
	o.UpdatedAt = now
	return nil
}

// Cancel anula la orden; solo permitido antes de cualquier envío
// (draft o confirmed y sin cantidades enviadas).
func Cancel(o *entity.SalesOrder, now time.Time) error {
	if o.HasShipment() {
		return fmt.Errorf("%w: orden %s ya tiene envíos", domain.ErrCannotCancelShippedOrder, o.OrderNumber)
	}
	if !can(o.Status, ActionCancel) {
		if o.Status == entity.OrderStatusPartiallyShipped || o.Status == entity.OrderStatusShipped || o.Status == entity.OrderStatusDelivered {
			return fmt.Errorf("%w: orden %s en estado %s", domain.ErrCannotCancelShippedOrder, o.OrderNumber, o.Status)
		}
		return fmt.Errorf("%w: orden %s en estado %s no admite cancel", domain.ErrInvalidTransition, o.OrderNumber, o.Status)
	}
	o.Status = entity.OrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	return nil
}

// MarkDelivered marca la recepción confirmada; solo desde shipped.
func MarkDelivered(o *entity.SalesOrder, actor string, now time.Time) error {
	if !can(o.Status, ActionMarkDelivered) {
		return fmt.Errorf("%w: orden %s en estado %s no admite mark_delivered", domain.ErrInvalidTransition, o.OrderNumber, o.Status)
	}
	o.Status = entity.OrderStatusDelivered
	o.DeliveredAt = &now
	o.DeliveredBy = actor
	o.UpdatedAt = now
	return nil
}
