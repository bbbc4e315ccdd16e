package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIN     = "IN"     // entrada (recepción, devolución)
	MovementTypeOUT    = "OUT"    // salida (envío, venta)
	MovementTypeADJUST = "ADJUST" // ajuste correctivo (signo libre)
)

// StockMovement es un asiento inmutable del libro de inventario: un registro
// por movimiento físico o correctivo, nunca mutado. QuantityAfter debe ser
// QuantityBefore + QuantityChange; la cadena before/after por producto queda
// garantizada por el bloqueo de fila del producto, no por timestamps.
type StockMovement struct {
	ID               string
	ProductID        string
	Type             string // IN, OUT, ADJUST
	QuantityChange   int64  // delta con signo: positivo IN, negativo OUT
	QuantityBefore   int64
	QuantityAfter    int64
	PerformedAt      time.Time
	PerformedBy      string  // UserID
	LinkedShipmentID *string // envío que originó la salida (si aplica)
	Notes            string
}
