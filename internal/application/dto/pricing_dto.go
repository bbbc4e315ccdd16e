package dto

import "github.com/shopspring/decimal"

// PriceQuoteResponse vista previa de precio y reparto (sin efectos).
// Usa exactamente el mismo redondeo que la liquidación persistida.
type PriceQuoteResponse struct {
	BasePrice       decimal.Decimal `json:"base_price"`
	MarginRate      decimal.Decimal `json:"margin_rate"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	Gain            decimal.Decimal `json:"gain"`
	AffiliateAmount decimal.Decimal `json:"affiliate_amount"`
	PlatformAmount  decimal.Decimal `json:"platform_amount"`
	RoundingMode    string          `json:"rounding_mode"`
}
