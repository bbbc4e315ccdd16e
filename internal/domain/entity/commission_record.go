package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionRecord congela la liquidación de una orden del canal de
// afiliados: precio base, tasas aplicadas y reparto calculado. Se crea una
// sola vez por orden (UNIQUE sobre order_id) y es inmutable; una corrección
// produce un registro nuevo que referencia el original vía Corrects.
type CommissionRecord struct {
	ID              string
	OrderID         string
	BasePrice       decimal.Decimal
	MarginRate      decimal.Decimal
	CommissionRate  decimal.Decimal
	SellingPrice    decimal.Decimal
	AffiliateAmount decimal.Decimal
	PlatformAmount  decimal.Decimal
	Currency        string
	RoundingMode    string  // ej. "half_up_2"
	Corrects        *string // id del registro corregido (si aplica)
	CreatedAt       time.Time
	CreatedBy       string
}
