package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con fmt.Errorf("%w: ...") para añadir el
// contexto (orden, línea, producto, cantidades) que la capa HTTP expone.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrForbidden    = errors.New("acceso denegado")

	// Libro de inventario
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrLinkedEntryExists = errors.New("existen movimientos posteriores para el producto")

	// Máquina de estados de órdenes de venta
	ErrInvalidTransition        = errors.New("transición de estado inválida")
	ErrInvalidOrderState        = errors.New("el estado de la orden no permite la operación")
	ErrCannotCloseWithRemainder = errors.New("no se puede cerrar la orden con pendiente por enviar")
	ErrCannotCancelShippedOrder = errors.New("no se puede cancelar una orden con envíos registrados")
	ErrOverShipment             = errors.New("cantidad supera lo pendiente por enviar")

	// Cálculo de precios y comisiones
	ErrInvalidMarginRate = errors.New("tasa de margen inválida")

	// Concurrencia y cálculos derivados
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente la operación")
	ErrComputationFailed   = errors.New("falló el cálculo derivado")
)
