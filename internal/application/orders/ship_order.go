package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verone/commerce-core/internal/application/dto"
	"github.com/verone/commerce-core/internal/application/stock"
	"github.com/verone/commerce-core/internal/domain"
	"github.com/verone/commerce-core/internal/domain/entity"
	"github.com/verone/commerce-core/internal/domain/order"
	"github.com/verone/commerce-core/internal/domain/repository"
	"github.com/verone/commerce-core/pkg/metrics"
)

// TTL del atajo de idempotencia en Redis. La restricción UNIQUE en BD cubre
// los reintentos que lleguen después.
const idemTTL = 24 * time.Hour

func idemKey(requestID string) string {
	return "shipment:request:" + requestID
}

// ShipmentResult es el resultado de CreateShipment. Replayed indica que el
// request id ya estaba registrado y se devuelve el envío original sin
// efectos nuevos.
type ShipmentResult struct {
	Shipment    *entity.Shipment
	Order       *entity.SalesOrder
	OrderStatus string
	Replayed    bool
}

// CreateShipment registra un envío parcial o total contra una orden en UNA
// transacción: bloquea la cabecera, valida cada línea contra lo pendiente
// (sin recortar jamás: exceso = ErrOverShipment y rollback completo), genera
// la salida de inventario enlazada por línea, actualiza cantidades y recalcula
// el estado (shipped / partially_shipped).
//
// Idempotencia: el request id del cliente deduplica reintentos tras timeout.
// Redis responde los reintentos evidentes sin abrir transacción; la garantía
// real es la restricción UNIQUE sobre shipments.request_id. Un conflicto de
// concurrencia se reintenta UNA vez con estado fresco.
func (uc *OrderUseCase) CreateShipment(ctx context.Context, companyID, userID, orderID string, in dto.CreateShipmentRequest) (*ShipmentResult, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: el envío requiere al menos una línea", domain.ErrInvalidInput)
	}
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: cantidad debe ser positiva (producto %s)", domain.ErrInvalidInput, l.ProductID)
		}
	}
	requestID := in.RequestID
	if requestID == "" {
		// Sin request id del cliente no hay idempotencia entre reintentos;
		// se genera uno para la traza.
		requestID = uuid.New().String()
	}

	// Atajo: reintento evidente ya visto por Redis
	if uc.idem != nil {
		if seen, err := uc.idem.Seen(ctx, idemKey(requestID)); err == nil && seen {
			if result, err := uc.replayShipment(requestID); err == nil && result != nil {
				metrics.ShipmentsTotal.WithLabelValues("replayed").Inc()
				return result, nil
			}
		}
	}

	result, err := uc.createShipmentTx(ctx, companyID, userID, orderID, requestID, in)
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		// Un solo reintento automático con estado fresco
		metrics.ConcurrencyRetriesTotal.Inc()
		uc.log.Warn().Str("order_id", orderID).Msg("conflicto de concurrencia en envío, reintentando")
		result, err = uc.createShipmentTx(ctx, companyID, userID, orderID, requestID, in)
	}
	if errors.Is(err, domain.ErrDuplicate) {
		// Dos reintentos simultáneos: el otro ganó la carrera del UNIQUE.
		if replay, rerr := uc.replayShipment(requestID); rerr == nil && replay != nil {
			metrics.ShipmentsTotal.WithLabelValues("replayed").Inc()
			return replay, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if result.Replayed {
		metrics.ShipmentsTotal.WithLabelValues("replayed").Inc()
		return result, nil
	}

	metrics.ShipmentsTotal.WithLabelValues("created").Inc()
	if uc.idem != nil {
		if err := uc.idem.Mark(ctx, idemKey(requestID), idemTTL); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo marcar el request id en redis")
		}
	}
	uc.publish(ctx, result.Shipment.OrderID, newOrderShippedEvent(result.Order, result.Shipment.ID))
	uc.log.Info().
		Str("order_id", result.Shipment.OrderID).
		Str("shipment_id", result.Shipment.ID).
		Str("status", result.OrderStatus).
		Msg("envío registrado")
	return result, nil
}

func (uc *OrderUseCase) createShipmentTx(ctx context.Context, companyID, userID, orderID, requestID string, in dto.CreateShipmentRequest) (*ShipmentResult, error) {
	now := time.Now().UTC()
	var result *ShipmentResult

	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.SalesOrderRepository,
		shipmentRepo repository.ShipmentRepository,
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		// Deduplicación transaccional: si el request id ya existe se
		// devuelve el envío original, sin efecto alguno.
		if existing, err := shipmentRepo.GetByRequestID(requestID); err != nil {
			return err
		} else if existing != nil {
			o, err := orderRepo.GetByID(existing.OrderID)
			if err != nil {
				return err
			}
			status := ""
			if o != nil {
				status = o.Status
			}
			result = &ShipmentResult{Shipment: existing, Order: o, OrderStatus: status, Replayed: true}
			return nil
		}

		o, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
		}
		if o.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if o.Status != entity.OrderStatusConfirmed && o.Status != entity.OrderStatusPartiallyShipped {
			return fmt.Errorf("%w: orden %s en estado %s no admite envíos", domain.ErrInvalidOrderState, o.OrderNumber, o.Status)
		}

		itemsByProduct := make(map[string]*entity.SalesOrderItem, len(o.Items))
		for _, it := range o.Items {
			itemsByProduct[it.ProductID] = it
		}

		shipment := &entity.Shipment{
			ID:             uuid.New().String(),
			OrderID:        o.ID,
			RequestID:      requestID,
			TrackingNumber: in.TrackingNumber,
			ShippedAt:      now,
			CreatedBy:      userID,
		}

		for _, line := range in.Lines {
			item, ok := itemsByProduct[line.ProductID]
			if !ok {
				return fmt.Errorf("%w: el producto %s no pertenece a la orden %s", domain.ErrInvalidInput, line.ProductID, o.OrderNumber)
			}
			remaining := item.RemainingToShip()
			if line.Quantity > remaining {
				// Nunca se recorta al pendiente: exceso = rollback completo
				return fmt.Errorf("%w: producto %s solicitado %d, pendiente %d",
					domain.ErrOverShipment, line.ProductID, line.Quantity, remaining)
			}

			// Salida de inventario enlazada al envío, misma transacción
			if _, err := stock.ApplyOUTForShipmentInTx(movRepo, productRepo, line.ProductID, userID, shipment.ID, line.Quantity, now); err != nil {
				return err
			}

			item.QuantityShipped += line.Quantity
			if err := orderRepo.UpdateItemShipment(item.ID, item.QuantityShipped, item.WaivedQuantity); err != nil {
				return err
			}
			shipment.Items = append(shipment.Items, &entity.ShipmentItem{
				ShipmentID: shipment.ID,
				ProductID:  line.ProductID,
				Quantity:   line.Quantity,
			})
		}

		if err := order.ApplyShipment(o, userID, now); err != nil {
			return err
		}
		if err := orderRepo.UpdateStatus(o); err != nil {
			return err
		}
		if err := shipmentRepo.Create(shipment); err != nil {
			return err
		}
		result = &ShipmentResult{Shipment: shipment, Order: o, OrderStatus: o.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// replayShipment recupera el envío original de un request id ya procesado.
func (uc *OrderUseCase) replayShipment(requestID string) (*ShipmentResult, error) {
	existing, err := uc.shipRepo.GetByRequestID(requestID)
	if err != nil || existing == nil {
		return nil, err
	}
	o, err := uc.orderRepo.GetByID(existing.OrderID)
	if err != nil {
		return nil, err
	}
	status := ""
	if o != nil {
		status = o.Status
	}
	return &ShipmentResult{Shipment: existing, Order: o, OrderStatus: status, Replayed: true}, nil
}
