package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo.
// OnHandQuantity es la cantidad física disponible, cacheada desde el libro de
// movimientos (stock_movements) y actualizada en la misma transacción que cada
// asiento. MinStockThreshold es el umbral de alerta de stock bajo (0 = usar el
// umbral por defecto del despliegue).
type Product struct {
	ID                string
	CompanyID         string
	SKU               string // código único por empresa
	Name              string
	Description       string
	UnitPriceHT       decimal.Decimal // precio base sin impuestos (HT)
	OnHandQuantity    int64
	MinStockThreshold int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
