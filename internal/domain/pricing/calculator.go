package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/verone/commerce-core/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Calculator implementa el cálculo de precio de venta y reparto de comisiones
// del canal de afiliados (servicio de dominio, puro y sin efectos).
//
// Convención de margen: markup sobre el precio de venta, no sobre el costo:
//
//	PrecioVenta = Base / (1 - Margen/100)
//
// El redondeo (half-up, Precision decimales) se aplica UNA vez por valor de
// salida, nunca sobre términos intermedios: aplicar el mismo redondeo en
// vista previa y en persistencia es lo que evita el descuadre de centavos.
type Calculator struct {
	precision int32
}

// NewCalculator construye el calculador con la precisión de redondeo del
// despliegue (2 = centavos).
func NewCalculator(precision int32) Calculator {
	if precision < 0 {
		precision = 2
	}
	return Calculator{precision: precision}
}

// round aplica half-up a la precisión configurada.
func (c Calculator) round(d decimal.Decimal) decimal.Decimal {
	return d.Round(c.precision)
}

// SellingPrice calcula el precio de venta desde la base HT y la tasa de
// margen en porcentaje. Margen 0 devuelve la base sin tocar; margen >= 100
// (o negativo) es inválido porque la división deja de tener sentido.
func (c Calculator) SellingPrice(basePriceHT, marginRatePercent decimal.Decimal) (decimal.Decimal, error) {
	if marginRatePercent.IsNegative() || marginRatePercent.GreaterThanOrEqual(hundred) {
		return decimal.Zero, fmt.Errorf("%w: %s%%", domain.ErrInvalidMarginRate, marginRatePercent)
	}
	if marginRatePercent.IsZero() {
		return basePriceHT, nil
	}
	divisor := decimal.NewFromInt(1).Sub(marginRatePercent.Div(hundred))
	return c.round(basePriceHT.Div(divisor)), nil
}

// Gain es la ganancia del afiliado: precio de venta menos base, redondeada.
func (c Calculator) Gain(basePriceHT, marginRatePercent decimal.Decimal) (decimal.Decimal, error) {
	selling, err := c.SellingPrice(basePriceHT, marginRatePercent)
	if err != nil {
		return decimal.Zero, err
	}
	return c.round(selling.Sub(basePriceHT)), nil
}

// SplitCommission reparte el precio de venta entre afiliado y plataforma.
// La parte de la plataforma se obtiene por RESTA, no con su propio
// porcentaje: así las dos partes suman exactamente el precio de venta.
func (c Calculator) SplitCommission(sellingPrice, commissionRatePercent decimal.Decimal) (affiliate, platform decimal.Decimal, err error) {
	if commissionRatePercent.IsNegative() || commissionRatePercent.GreaterThan(hundred) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: tasa de comisión %s%%", domain.ErrInvalidInput, commissionRatePercent)
	}
	affiliate = c.round(sellingPrice.Mul(commissionRatePercent).Div(hundred))
	platform = sellingPrice.Sub(affiliate)
	return affiliate, platform, nil
}

// RoundingMode describe el modo aplicado, persistido en cada liquidación
// para auditoría (ej. "half_up_2").
func (c Calculator) RoundingMode() string {
	return fmt.Sprintf("half_up_%d", c.precision)
}
