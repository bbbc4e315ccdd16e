package entity

// Tipos de alerta de stock (derivadas, nunca persistidas).
const (
	AlertTypeLowStock          = "low_stock"
	AlertTypeOutOfStock        = "out_of_stock"
	AlertTypeNoStockButOrdered = "no_stock_but_ordered"
)

// Severidades de alerta.
const (
	AlertSeverityInfo     = "info"
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"
)

// BlockedOrder es una orden de venta abierta sin stock para despachar,
// ordenada por fecha de creación (demanda más antigua primero).
type BlockedOrder struct {
	OrderID     string
	OrderNumber string
	Quantity    int64 // pendiente por enviar
}

// StockAlert es una alerta derivada comparando stock disponible, umbral
// mínimo y demanda abierta. IsInDraft indica que ya existe una orden de
// compra abierta cubriendo el faltante; el flag evita sugerir una compra
// duplicada pero NUNCA suprime la alerta (decisión de producto: no dar
// falsa tranquilidad mientras la mercancía no llegue).
type StockAlert struct {
	ProductID     string
	SKU           string
	ProductName   string
	Type          string // low_stock, out_of_stock, no_stock_but_ordered
	Severity      string // info, warning, critical
	CurrentStock  int64
	MinStock      int64
	BlockedOrders []BlockedOrder // solo para no_stock_but_ordered
	ShortageQty   int64

	IsInDraft        bool
	QuantityInDraft  int64
	DraftOrderID     string
	DraftOrderNumber string
}
