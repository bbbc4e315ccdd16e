package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/verone/commerce-core/internal/application/dto"
	"github.com/verone/commerce-core/internal/domain"
	"github.com/verone/commerce-core/internal/domain/entity"
	"github.com/verone/commerce-core/internal/domain/order"
	"github.com/verone/commerce-core/internal/domain/pricing"
	"github.com/verone/commerce-core/internal/domain/repository"
	"github.com/verone/commerce-core/pkg/logger"
)

var hundred = decimal.NewFromInt(100)

// OrderUseCase orquesta el ciclo de vida de órdenes de venta: creación,
// transiciones de estado, envíos (ship_order.go) y liquidación de comisiones
// (settlement.go). Toda escritura de estado pasa por la máquina de estados
// del dominio dentro de una transacción con la cabecera bloqueada.
type OrderUseCase struct {
	txRunner    TxRunner
	orderRepo   repository.SalesOrderRepository
	productRepo repository.ProductRepository
	shipRepo    repository.ShipmentRepository
	calc        pricing.Calculator
	vatRate     decimal.Decimal
	publisher   EventPublisher   // opcional (nil = sin eventos)
	idem        IdempotencyStore // opcional (nil = solo garantía en BD)
	log         *logger.Logger
}

// NewOrderUseCase construye el caso de uso. publisher e idem pueden ser nil
// cuando Kafka/Redis están deshabilitados en el despliegue.
func NewOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.SalesOrderRepository,
	productRepo repository.ProductRepository,
	shipRepo repository.ShipmentRepository,
	calc pricing.Calculator,
	vatRatePercent decimal.Decimal,
	publisher EventPublisher,
	idem IdempotencyStore,
	log *logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		txRunner:    txRunner,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		shipRepo:    shipRepo,
		calc:        calc,
		vatRate:     vatRatePercent,
		publisher:   publisher,
		idem:        idem,
		log:         log,
	}
}

// CreateOrder crea una orden en draft con sus líneas. El número de orden es
// único e inmutable; si el cliente no lo aporta se genera estilo
// SO-20260301-a1b2c3d4. Los totales HT/TTC se calculan una vez aquí.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, companyID, userID string, in dto.CreateOrderRequest) (*entity.SalesOrder, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la orden requiere al menos una línea", domain.ErrInvalidInput)
	}
	if in.MarginRate != nil {
		// Valida la tasa al crear, no al liquidar: una orden de afiliado
		// con margen inválido no debe existir.
		if _, err := uc.calc.SellingPrice(decimal.NewFromInt(1), *in.MarginRate); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()
	number := strings.TrimSpace(in.OrderNumber)
	if number == "" {
		number = fmt.Sprintf("SO-%s-%s", now.Format("20060102"), uuid.New().String()[:8])
	}
	currency := in.Currency
	if currency == "" {
		currency = "EUR"
	}

	totalHT := decimal.Zero
	items := make([]*entity.SalesOrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: cantidad debe ser positiva (producto %s)", domain.ErrInvalidInput, it.ProductID)
		}
		if it.UnitPriceHT.IsNegative() {
			return nil, fmt.Errorf("%w: precio unitario negativo (producto %s)", domain.ErrInvalidInput, it.ProductID)
		}
		product, err := uc.productRepo.GetByID(it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
		}
		if product.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		items = append(items, &entity.SalesOrderItem{
			ID:          uuid.New().String(),
			OrderID:     orderID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPriceHT: it.UnitPriceHT,
		})
		totalHT = totalHT.Add(it.UnitPriceHT.Mul(decimal.NewFromInt(it.Quantity)))
	}

	totalHT = totalHT.Round(2)
	totalTTC := totalHT.Mul(decimal.NewFromInt(1).Add(uc.vatRate.Div(hundred))).Round(2)

	o := &entity.SalesOrder{
		ID:             orderID,
		CompanyID:      companyID,
		OrderNumber:    number,
		Status:         entity.OrderStatusDraft,
		Currency:       currency,
		TotalHT:        totalHT,
		TotalTTC:       totalTTC,
		MarginRate:     in.MarginRate,
		CommissionRate: in.CommissionRate,
		CompletionPct:  decimal.Zero,
		Items:          items,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.orderRepo.Create(o); err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_number", number).Int("lines", len(items)).Msg("orden creada")
	return o, nil
}

// GetOrder devuelve la orden con sus líneas.
func (uc *OrderUseCase) GetOrder(ctx context.Context, companyID, orderID string) (*entity.SalesOrder, error) {
	o, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
	}
	if o.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return o, nil
}

// transition ejecuta una transición de estado con la cabecera bloqueada y
// persiste estado + campos derivados en una sola escritura.
func (uc *OrderUseCase) transition(ctx context.Context, companyID, orderID string, apply func(o *entity.SalesOrder, shipRepo repository.ShipmentRepository) error) (*entity.SalesOrder, error) {
	var result *entity.SalesOrder
	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.SalesOrderRepository,
		shipmentRepo repository.ShipmentRepository,
		_ repository.StockMovementRepository,
		_ repository.ProductRepository,
	) error {
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
		if err := apply(o, shipmentRepo); err != nil {
			return err
		}
		if err := orderRepo.UpdateStatus(o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Confirm pasa la orden de draft a confirmed.
func (uc *OrderUseCase) Confirm(ctx context.Context, companyID, userID, orderID string) (*entity.SalesOrder, error) {
	now := time.Now().UTC()
	return uc.transition(ctx, companyID, orderID, func(o *entity.SalesOrder, _ repository.ShipmentRepository) error {
		return order.Confirm(o, userID, now)
	})
}

// Cancel anula la orden si no existe ningún envío registrado. Además del
// chequeo sobre cantidades enviadas, consulta la tabla de envíos dentro de la
// misma transacción: un envío ya persistido bloquea la cancelación aunque la
// proyección de cantidades aún no lo refleje.
func (uc *OrderUseCase) Cancel(ctx context.Context, companyID, orderID string) (*entity.SalesOrder, error) {
	now := time.Now().UTC()
	return uc.transition(ctx, companyID, orderID, func(o *entity.SalesOrder, shipRepo repository.ShipmentRepository) error {
		exists, err := shipRepo.ExistsForOrder(o.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: orden %s", domain.ErrCannotCancelShippedOrder, o.OrderNumber)
		}
		return order.Cancel(o, now)
	})
}

// Close cierra la orden, exonerando el remanente si waiveRemainder es true.
// No genera ningún movimiento de inventario: el remanente exonerado queda
// registrado por línea para auditoría.
func (uc *OrderUseCase) Close(ctx context.Context, companyID, userID, orderID string, waiveRemainder bool) (*entity.SalesOrder, error) {
	now := time.Now().UTC()
	o, err := uc.transitionWithItems(ctx, companyID, orderID, func(o *entity.SalesOrder) error {
		return order.Close(o, waiveRemainder, userID, now)
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, o.ID, newOrderClosedEvent(o, waiveRemainder))
	return o, nil
}

// MarkDelivered marca la recepción confirmada de la orden.
func (uc *OrderUseCase) MarkDelivered(ctx context.Context, companyID, userID, orderID string) (*entity.SalesOrder, error) {
	now := time.Now().UTC()
	return uc.transition(ctx, companyID, orderID, func(o *entity.SalesOrder, _ repository.ShipmentRepository) error {
		return order.MarkDelivered(o, userID, now)
	})
}

// transitionWithItems es transition persistiendo además las cantidades de
// cada línea (Close muta WaivedQuantity).
func (uc *OrderUseCase) transitionWithItems(ctx context.Context, companyID, orderID string, apply func(o *entity.SalesOrder) error) (*entity.SalesOrder, error) {
	var result *entity.SalesOrder
	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.SalesOrderRepository,
		_ repository.ShipmentRepository,
		_ repository.StockMovementRepository,
		_ repository.ProductRepository,
	) error {
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
		if err := apply(o); err != nil {
			return err
		}
		for _, it := range o.Items {
			if err := orderRepo.UpdateItemShipment(it.ID, it.QuantityShipped, it.WaivedQuantity); err != nil {
				return err
			}
		}
		if err := orderRepo.UpdateStatus(o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// publish emite un evento post-commit de forma best-effort.
func (uc *OrderUseCase) publish(ctx context.Context, key string, event any) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, key, event); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo publicar el evento")
	}
}
