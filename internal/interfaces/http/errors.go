package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/verone/commerce-core/internal/application/dto"
	"github.com/verone/commerce-core/internal/domain"
)

// respondError traduce errores de dominio a respuestas HTTP. El mensaje
// expone el contexto que el caso de uso envolvió (orden, línea, cantidades);
// los errores no mapeados salen como 500 sin detalle interno.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidMarginRate):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrLinkedEntryExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LINKED_ENTRY_EXISTS", Message: err.Error()})
	case errors.Is(err, domain.ErrOverShipment):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OVER_SHIPMENT", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidOrderState),
		errors.Is(err, domain.ErrCannotCloseWithRemainder),
		errors.Is(err, domain.ErrCannotCancelShippedOrder):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente"})
	case errors.Is(err, domain.ErrComputationFailed):
		// Vista degradada: alertas no disponibles, el resto de la app sigue
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "ALERTS_UNAVAILABLE", Message: "alertas no disponibles temporalmente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
