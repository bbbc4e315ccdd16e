package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verone/commerce-core/internal/application/dto"
	"github.com/verone/commerce-core/internal/domain"
	"github.com/verone/commerce-core/internal/domain/entity"
)

func confirmedOrder(t *testing.T, f *fixture, quantity int64) *entity.SalesOrder {
	t.Helper()
	o := f.createOrder(t, quantity, false)
	_, err := f.uc.Confirm(context.Background(), "company-1", "user-1", o.ID)
	require.NoError(t, err)
	return o
}

func TestCreateShipment_ParcialActualizaTodo(t *testing.T) {
	f := newFixture(t, 50)
	o := confirmedOrder(t, f, 10)

	res, err := f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 4}},
	})

	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, entity.OrderStatusPartiallyShipped, res.OrderStatus)
	assert.True(t, res.Order.CompletionPct.Equal(decimal.NewFromInt(40)), "avance 40%%: %s", res.Order.CompletionPct)
	assert.Equal(t, int64(4), res.Order.Items[0].QuantityShipped)
	assert.Equal(t, int64(46), f.product.OnHandQuantity, "la salida descuenta stock en la misma tx")

	require.Len(t, f.tx.movRepo.movements, 1)
	mov := f.tx.movRepo.movements[0]
	assert.Equal(t, entity.MovementTypeOUT, mov.Type)
	assert.Equal(t, int64(-4), mov.QuantityChange)
	require.NotNil(t, mov.LinkedShipmentID, "el asiento queda enlazado al envío")
	assert.Equal(t, res.Shipment.ID, *mov.LinkedShipmentID)
}

func TestCreateShipment_CompletaPasaAShipped(t *testing.T) {
	f := newFixture(t, 50)
	o := confirmedOrder(t, f, 10)

	_, err := f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	res, err := f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-2",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 6}},
	})

	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusShipped, res.OrderStatus)
	assert.True(t, res.Order.CompletionPct.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, res.Order.ShippedAt)
}

func TestCreateShipment_ExcesoNuncaSeRecorta(t *testing.T) {
	f := newFixture(t, 50)
	o := confirmedOrder(t, f, 10)

	_, err := f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 11}},
	})

	require.ErrorIs(t, err, domain.ErrOverShipment)
	assert.Contains(t, err.Error(), "solicitado 11", "el error lleva lo solicitado")
	assert.Contains(t, err.Error(), "pendiente 10", "y lo pendiente")
	assert.Equal(t, entity.OrderStatusConfirmed, o.Status, "la orden no cambia")
	assert.Equal(t, int64(0), o.Items[0].QuantityShipped)
	assert.Empty(t, f.tx.movRepo.movements, "sin asientos de inventario")
	assert.Empty(t, f.tx.shipmentRepo.shipments, "sin envío persistido")
}

func TestCreateShipment_EstadoInvalido(t *testing.T) {
	f := newFixture(t, 50)
	o := f.createOrder(t, 10, false) // sigue en draft

	_, err := f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 1}},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)
}

func TestCreateShipment_ProductoAjenoALaOrden(t *testing.T) {
	f := newFixture(t, 50)
	o := confirmedOrder(t, f, 10)

	_, err := f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: "otro-producto", Quantity: 1}},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateShipment_StockInsuficienteFalla(t *testing.T) {
	f := newFixture(t, 2) // menos stock que lo pedido
	o := confirmedOrder(t, f, 10)

	_, err := f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 5}},
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestCreateShipment_RequestIDRepetidoDevuelveOriginal(t *testing.T) {
	f := newFixture(t, 50)
	o := confirmedOrder(t, f, 10)

	first, err := f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "retry-abc",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	second, err := f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "retry-abc",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 4}},
	})

	require.NoError(t, err)
	assert.True(t, second.Replayed, "el reintento devuelve el envío original")
	assert.Equal(t, first.Shipment.ID, second.Shipment.ID)
	assert.Equal(t, int64(4), o.Items[0].QuantityShipped, "sin doble despacho")
	assert.Len(t, f.tx.movRepo.movements, 1, "sin doble salida de inventario")
	assert.Equal(t, int64(46), f.product.OnHandQuantity)
}

func TestCreateShipment_ConflictoDeConcurrenciaReintentaUnaVez(t *testing.T) {
	f := newFixture(t, 50)
	o := confirmedOrder(t, f, 10)
	f.tx.orderRuns = 0
	f.tx.failOrderRuns = 1 // el primer intento choca

	res, err := f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 4}},
	})

	require.NoError(t, err, "un conflicto aislado se reintenta solo")
	assert.Equal(t, entity.OrderStatusPartiallyShipped, res.OrderStatus)
	assert.Equal(t, 2, f.tx.orderRuns, "exactamente un reintento")
}

func TestCreateShipment_SegundoConflictoSale(t *testing.T) {
	f := newFixture(t, 50)
	o := confirmedOrder(t, f, 10)
	f.tx.failOrderRuns = 2 // también falla el reintento

	_, err := f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 4}},
	})

	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

func TestCreateShipment_CantidadNoPositiva(t *testing.T) {
	f := newFixture(t, 50)
	o := confirmedOrder(t, f, 10)

	_, err := f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 0}},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
