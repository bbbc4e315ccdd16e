package pricing_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verone/commerce-core/internal/domain"
	"github.com/verone/commerce-core/internal/domain/pricing"
)

// ──────────────────────────────────────────────────────────────────────────────
// Vectores de referencia del cálculo de precio de venta.
//
// Este test es el "canario en la mina" del motor de comisiones: la fuente
// dominante de bugs de integridad en este dominio es el redondeo aplicado
// distinto entre la vista previa y la liquidación persistida. Si alguien
// cambia la fórmula, la convención de margen o el momento del redondeo, estos
// vectores fallan de inmediato.
//
//	PrecioVenta = round2(Base / (1 - Margen/100))
//	base 100.00, margen 15% → 100 / 0.85 = 117.6470… → 117.65, ganancia 17.65
//	base  20.19, margen 15% →  20.19 / 0.85 = 23.7529… → 23.75, ganancia 3.56
// ──────────────────────────────────────────────────────────────────────────────

func calc() pricing.Calculator {
	return pricing.NewCalculator(2)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestSellingPrice_VectoresExactos(t *testing.T) {
	cases := []struct {
		name        string
		base        string
		marginRate  string
		wantPrice   string
		wantGain    string
	}{
		{"base 100 margen 15", "100.00", "15", "117.65", "17.65"},
		{"base 20.19 margen 15", "20.19", "15", "23.75", "3.56"},
		{"base 50 margen 20", "50.00", "20", "62.50", "12.50"},
		{"base 33.33 margen 33.33", "33.33", "33.33", "49.99", "16.66"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price, err := calc().SellingPrice(dec(tc.base), dec(tc.marginRate))
			require.NoError(t, err)
			assert.True(t, dec(tc.wantPrice).Equal(price),
				"precio esperado %s, obtenido %s", tc.wantPrice, price)

			gain, err := calc().Gain(dec(tc.base), dec(tc.marginRate))
			require.NoError(t, err)
			assert.True(t, dec(tc.wantGain).Equal(gain),
				"ganancia esperada %s, obtenida %s", tc.wantGain, gain)
		})
	}
}

// Margen 0 devuelve la base sin redondear ni tocar.
func TestSellingPrice_MargenCeroDevuelveBase(t *testing.T) {
	base := dec("20.19")
	price, err := calc().SellingPrice(base, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, base.Equal(price), "con margen 0 el precio es la base")

	gain, err := calc().Gain(base, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, gain.IsZero(), "con margen 0 la ganancia es cero")
}

// Margen >= 100 no tiene precio de venta posible (división no positiva).
func TestSellingPrice_Margen100EsInvalido(t *testing.T) {
	_, err := calc().SellingPrice(dec("100.00"), dec("100"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidMarginRate))

	_, err = calc().SellingPrice(dec("100.00"), dec("150"))
	assert.True(t, errors.Is(err, domain.ErrInvalidMarginRate))

	_, err = calc().SellingPrice(dec("100.00"), dec("-5"))
	assert.True(t, errors.Is(err, domain.ErrInvalidMarginRate),
		"un margen negativo también es inválido")
}

// Idempotencia del redondeo: recomputar el precio desde base reconstruida
// (precio - ganancia) y el mismo margen devuelve el precio original ±0.01.
func TestSellingPrice_RoundTripDesdeGanancia(t *testing.T) {
	c := calc()
	base := dec("20.19")
	rate := dec("15")

	price, err := c.SellingPrice(base, rate)
	require.NoError(t, err)
	gain, err := c.Gain(base, rate)
	require.NoError(t, err)

	rebuilt, err := c.SellingPrice(price.Sub(gain), rate)
	require.NoError(t, err)

	diff := rebuilt.Sub(price).Abs()
	assert.True(t, diff.LessThanOrEqual(dec("0.01")),
		"round-trip fuera de tolerancia: original %s, recomputado %s", price, rebuilt)
}

// ── Reparto de comisiones ─────────────────────────────────────────────────────

// La suma de las dos partes debe ser EXACTAMENTE el precio de venta: la parte
// de la plataforma sale por resta, nunca por su propio porcentaje.
func TestSplitCommission_SumaExacta(t *testing.T) {
	c := calc()
	cases := []struct{ selling, rate string }{
		{"117.65", "5"},
		{"23.75", "5"},
		{"99.99", "7.5"},
		{"0.01", "33"},
		{"1000.00", "0"},
		{"10.00", "100"},
	}
	for _, tc := range cases {
		affiliate, platform, err := c.SplitCommission(dec(tc.selling), dec(tc.rate))
		require.NoError(t, err)
		sum := affiliate.Add(platform)
		assert.True(t, dec(tc.selling).Equal(sum),
			"selling=%s rate=%s: %s + %s = %s (descuadre)", tc.selling, tc.rate, affiliate, platform, sum)
	}
}

func TestSplitCommission_VectorLinkMe(t *testing.T) {
	// Comisión LinkMe por defecto: 5% sobre el precio de venta.
	affiliate, platform, err := calc().SplitCommission(dec("117.65"), dec("5"))
	require.NoError(t, err)
	assert.True(t, dec("5.88").Equal(affiliate), "comisión afiliado: %s", affiliate)
	assert.True(t, dec("111.77").Equal(platform), "parte plataforma: %s", platform)
}

func TestSplitCommission_TasaInvalida(t *testing.T) {
	_, _, err := calc().SplitCommission(dec("100.00"), dec("-1"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, _, err = calc().SplitCommission(dec("100.00"), dec("101"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// La precisión es configurable por despliegue; el modo queda descrito para
// persistirse con cada liquidación.
func TestCalculator_PrecisionConfigurable(t *testing.T) {
	c3 := pricing.NewCalculator(3)
	price, err := c3.SellingPrice(dec("100.00"), dec("15"))
	require.NoError(t, err)
	assert.True(t, dec("117.647").Equal(price), "precisión 3: %s", price)
	assert.Equal(t, "half_up_3", c3.RoundingMode())
	assert.Equal(t, "half_up_2", calc().RoundingMode())
}
