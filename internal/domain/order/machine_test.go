package order_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verone/commerce-core/internal/domain"
	"github.com/verone/commerce-core/internal/domain/entity"
	"github.com/verone/commerce-core/internal/domain/order"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testActor = "00000000-0000-0000-0000-000000000001"

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// buildOrder construye una orden con una línea de qty unidades.
func buildOrder(status string, qty, shipped int64) *entity.SalesOrder {
	return &entity.SalesOrder{
		ID:          "ord-1",
		OrderNumber: "SO-1001",
		Status:      status,
		Currency:    "EUR",
		Items: []*entity.SalesOrderItem{
			{ID: "item-1", OrderID: "ord-1", ProductID: "prod-1",
				Quantity: qty, QuantityShipped: shipped,
				UnitPriceHT: decimal.NewFromInt(10)},
		},
	}
}

// ── Confirm ───────────────────────────────────────────────────────────────────

func TestConfirm_DesdeDraft(t *testing.T) {
	o := buildOrder(entity.OrderStatusDraft, 10, 0)
	require.NoError(t, order.Confirm(o, testActor, now))
	assert.Equal(t, entity.OrderStatusConfirmed, o.Status)
	require.NotNil(t, o.ConfirmedAt)
	assert.Equal(t, testActor, o.ConfirmedBy)
}

func TestConfirm_RechazaEstadosNoDraft(t *testing.T) {
	for _, status := range []string{
		entity.OrderStatusConfirmed,
		entity.OrderStatusPartiallyShipped,
		entity.OrderStatusShipped,
		entity.OrderStatusDelivered,
		entity.OrderStatusCancelled,
	} {
		o := buildOrder(status, 10, 0)
		err := order.Confirm(o, testActor, now)
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition),
			"confirm desde %s debe fallar con ErrInvalidTransition", status)
		assert.Equal(t, status, o.Status, "el estado no debe cambiar al fallar")
	}
}

func TestConfirm_RechazaOrdenSinLineas(t *testing.T) {
	o := buildOrder(entity.OrderStatusDraft, 10, 0)
	o.Items = nil
	err := order.Confirm(o, testActor, now)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ── ApplyShipment ─────────────────────────────────────────────────────────────

// Envío parcial: qty=10, enviadas 4 → partially_shipped, pendiente 6.
func TestApplyShipment_ParcialYLuegoCompleto(t *testing.T) {
	o := buildOrder(entity.OrderStatusConfirmed, 10, 0)

	o.Items[0].QuantityShipped = 4
	require.NoError(t, order.ApplyShipment(o, testActor, now))
	assert.Equal(t, entity.OrderStatusPartiallyShipped, o.Status)
	assert.EqualValues(t, 6, o.RemainingToShip())
	assert.True(t, decimal.NewFromInt(40).Equal(o.CompletionPct), "avance 40%%: %s", o.CompletionPct)

	// Segundo envío con las 6 restantes → shipped.
	o.Items[0].QuantityShipped = 10
	require.NoError(t, order.ApplyShipment(o, testActor, now))
	assert.Equal(t, entity.OrderStatusShipped, o.Status)
	assert.EqualValues(t, 0, o.RemainingToShip())
	assert.True(t, decimal.NewFromInt(100).Equal(o.CompletionPct))
}

func TestApplyShipment_RechazaEstadosSinEnvio(t *testing.T) {
	for _, status := range []string{
		entity.OrderStatusDraft,
		entity.OrderStatusShipped,
		entity.OrderStatusDelivered,
		entity.OrderStatusCancelled,
	} {
		o := buildOrder(status, 10, 0)
		err := order.ApplyShipment(o, testActor, now)
		assert.True(t, errors.Is(err, domain.ErrInvalidOrderState),
			"envío en estado %s debe fallar", status)
	}
}

// ── Close ─────────────────────────────────────────────────────────────────────

func TestClose_SinWaiverConPendienteFalla(t *testing.T) {
	o := buildOrder(entity.OrderStatusPartiallyShipped, 10, 4)
	err := order.Close(o, false, testActor, now)
	assert.True(t, errors.Is(err, domain.ErrCannotCloseWithRemainder))
	assert.Equal(t, entity.OrderStatusPartiallyShipped, o.Status)
	assert.EqualValues(t, 0, o.Items[0].WaivedQuantity)
}

func TestClose_ConWaiverExoneraElRemanente(t *testing.T) {
	o := buildOrder(entity.OrderStatusPartiallyShipped, 10, 4)
	require.NoError(t, order.Close(o, true, testActor, now))
	assert.Equal(t, entity.OrderStatusShipped, o.Status)
	// El remanente queda registrado para auditoría, no se borra.
	assert.EqualValues(t, 6, o.Items[0].WaivedQuantity)
	assert.EqualValues(t, 0, o.RemainingToShip(), "el waiver congela las líneas")
}

func TestClose_SinPendienteNoRequiereWaiver(t *testing.T) {
	o := buildOrder(entity.OrderStatusPartiallyShipped, 10, 10)
	require.NoError(t, order.Close(o, false, testActor, now))
	assert.Equal(t, entity.OrderStatusShipped, o.Status)
	assert.EqualValues(t, 0, o.Items[0].WaivedQuantity)
}

func TestClose_DesdeDraftFalla(t *testing.T) {
	o := buildOrder(entity.OrderStatusDraft, 10, 0)
	err := order.Close(o, true, testActor, now)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
}

// ── Cancel ────────────────────────────────────────────────────────────────────

func TestCancel_DesdeDraftYConfirmed(t *testing.T) {
	for _, status := range []string{entity.OrderStatusDraft, entity.OrderStatusConfirmed} {
		o := buildOrder(status, 10, 0)
		require.NoError(t, order.Cancel(o, now))
		assert.Equal(t, entity.OrderStatusCancelled, o.Status)
		require.NotNil(t, o.CancelledAt)
	}
}

func TestCancel_ConEnviosFalla(t *testing.T) {
	o := buildOrder(entity.OrderStatusPartiallyShipped, 10, 4)
	err := order.Cancel(o, now)
	assert.True(t, errors.Is(err, domain.ErrCannotCancelShippedOrder))
	assert.Equal(t, entity.OrderStatusPartiallyShipped, o.Status)
}

// Una orden confirmed cuya línea ya registró envíos tampoco se puede anular,
// aunque el estado aún no haya avanzado (guard por cantidades, no solo status).
func TestCancel_ConCantidadEnviadaFallaAunqueConfirmed(t *testing.T) {
	o := buildOrder(entity.OrderStatusConfirmed, 10, 1)
	err := order.Cancel(o, now)
	assert.True(t, errors.Is(err, domain.ErrCannotCancelShippedOrder))
}

// ── MarkDelivered ─────────────────────────────────────────────────────────────

func TestMarkDelivered_SoloDesdeShipped(t *testing.T) {
	o := buildOrder(entity.OrderStatusShipped, 10, 10)
	require.NoError(t, order.MarkDelivered(o, testActor, now))
	assert.Equal(t, entity.OrderStatusDelivered, o.Status)
	assert.True(t, o.IsTerminal())

	for _, status := range []string{
		entity.OrderStatusDraft,
		entity.OrderStatusConfirmed,
		entity.OrderStatusPartiallyShipped,
		entity.OrderStatusDelivered,
		entity.OrderStatusCancelled,
	} {
		o := buildOrder(status, 10, 10)
		err := order.MarkDelivered(o, testActor, now)
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition),
			"mark_delivered desde %s debe fallar", status)
	}
}
