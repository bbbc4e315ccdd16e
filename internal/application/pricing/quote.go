package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/verone/commerce-core/internal/application/dto"
	"github.com/verone/commerce-core/internal/domain"
	domainpricing "github.com/verone/commerce-core/internal/domain/pricing"
)

// QuoteUseCase calcula la vista previa de precio y reparto de comisiones del
// canal de afiliados, sin ningún efecto. Usa el MISMO calculador que la
// liquidación persistida: lo que se muestra es lo que se congela.
type QuoteUseCase struct {
	calc                  domainpricing.Calculator
	defaultCommissionRate decimal.Decimal
}

// NewQuoteUseCase construye el caso de uso con la tasa de comisión por
// defecto del despliegue (se aplica cuando el cliente no envía la suya).
func NewQuoteUseCase(calc domainpricing.Calculator, defaultCommissionRate decimal.Decimal) *QuoteUseCase {
	return &QuoteUseCase{calc: calc, defaultCommissionRate: defaultCommissionRate}
}

// Quote calcula precio de venta, ganancia y reparto para una base HT y una
// tasa de margen. commissionRate nil usa la tasa por defecto.
func (uc *QuoteUseCase) Quote(ctx context.Context, basePrice, marginRate decimal.Decimal, commissionRate *decimal.Decimal) (*dto.PriceQuoteResponse, error) {
	if basePrice.IsNegative() {
		return nil, fmt.Errorf("%w: precio base negativo", domain.ErrInvalidInput)
	}
	rate := uc.defaultCommissionRate
	if commissionRate != nil {
		rate = *commissionRate
	}

	selling, err := uc.calc.SellingPrice(basePrice, marginRate)
	if err != nil {
		return nil, err
	}
	gain, err := uc.calc.Gain(basePrice, marginRate)
	if err != nil {
		return nil, err
	}
	affiliate, platform, err := uc.calc.SplitCommission(selling, rate)
	if err != nil {
		return nil, err
	}

	return &dto.PriceQuoteResponse{
		BasePrice:       basePrice,
		MarginRate:      marginRate,
		CommissionRate:  rate,
		SellingPrice:    selling,
		Gain:            gain,
		AffiliateAmount: affiliate,
		PlatformAmount:  platform,
		RoundingMode:    uc.calc.RoundingMode(),
	}, nil
}
