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

// shippedAffiliateOrder crea y despacha por completo una orden de afiliado
// con total HT 100.00, margen 15% y comisión 5%.
func shippedAffiliateOrder(t *testing.T, f *fixture) *entity.SalesOrder {
	t.Helper()
	o := f.createOrder(t, 10, true) // 10 × 10.00 = 100.00 HT
	_, err := f.uc.Confirm(context.Background(), "company-1", "user-1", o.ID)
	require.NoError(t, err)
	_, err = f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-settle",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 10}},
	})
	require.NoError(t, err)
	return o
}

func TestSettleOrder_CongelaLiquidacion(t *testing.T) {
	f := newFixture(t, 50)
	o := shippedAffiliateOrder(t, f)

	rec, err := f.uc.SettleOrder(context.Background(), "company-1", "user-1", o.ID)

	require.NoError(t, err)
	// Base 100.00, margen 15% → venta 117.65; comisión 5% → 5.88 / 111.77
	assert.True(t, rec.SellingPrice.Equal(decimal.RequireFromString("117.65")), "venta: %s", rec.SellingPrice)
	assert.True(t, rec.AffiliateAmount.Equal(decimal.RequireFromString("5.88")), "afiliado: %s", rec.AffiliateAmount)
	assert.True(t, rec.PlatformAmount.Equal(decimal.RequireFromString("111.77")), "plataforma: %s", rec.PlatformAmount)
	assert.True(t, rec.AffiliateAmount.Add(rec.PlatformAmount).Equal(rec.SellingPrice),
		"las partes suman exactamente el precio de venta")
	assert.Equal(t, "half_up_2", rec.RoundingMode)
	assert.Equal(t, "EUR", rec.Currency)
	assert.Equal(t, o.ID, rec.OrderID)
	assert.Nil(t, rec.Corrects)
}

func TestSettleOrder_SegundaVezDuplicada(t *testing.T) {
	f := newFixture(t, 50)
	o := shippedAffiliateOrder(t, f)

	_, err := f.uc.SettleOrder(context.Background(), "company-1", "user-1", o.ID)
	require.NoError(t, err)

	_, err = f.uc.SettleOrder(context.Background(), "company-1", "user-1", o.ID)

	assert.ErrorIs(t, err, domain.ErrDuplicate, "una sola liquidación por orden")
}

func TestSettleOrder_EstadoInvalido(t *testing.T) {
	f := newFixture(t, 50)
	o := f.createOrder(t, 10, true) // draft

	_, err := f.uc.SettleOrder(context.Background(), "company-1", "user-1", o.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)
}

func TestSettleOrder_SinCondicionesDeAfiliado(t *testing.T) {
	f := newFixture(t, 50)
	o := f.createOrder(t, 10, false) // sin tasas
	_, err := f.uc.Confirm(context.Background(), "company-1", "user-1", o.ID)
	require.NoError(t, err)
	_, err = f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 10}},
	})
	require.NoError(t, err)

	_, err = f.uc.SettleOrder(context.Background(), "company-1", "user-1", o.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettleOrder_TrasEntregaTambienVale(t *testing.T) {
	f := newFixture(t, 50)
	o := shippedAffiliateOrder(t, f)
	_, err := f.uc.MarkDelivered(context.Background(), "company-1", "user-1", o.ID)
	require.NoError(t, err)

	rec, err := f.uc.SettleOrder(context.Background(), "company-1", "user-1", o.ID)

	require.NoError(t, err)
	assert.True(t, rec.SellingPrice.Equal(decimal.RequireFromString("117.65")))
}
