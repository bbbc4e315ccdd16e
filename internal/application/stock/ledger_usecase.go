package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/verone/commerce-core/internal/application/dto"
	"github.com/verone/commerce-core/internal/domain"
	"github.com/verone/commerce-core/internal/domain/entity"
	"github.com/verone/commerce-core/internal/domain/repository"
	"github.com/verone/commerce-core/pkg/logger"
	"github.com/verone/commerce-core/pkg/metrics"
)

// LedgerUseCase registra y cancela asientos del libro de inventario de forma
// transaccional, con bloqueo de fila (SELECT FOR UPDATE) sobre el producto.
// El stock cacheado en products.on_hand_quantity se actualiza en la misma
// transacción que cada asiento: nunca divergen.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	publisher   EventPublisher // opcional (nil = sin eventos)
	log         *logger.Logger
}

// NewLedgerUseCase construye el caso de uso. publisher puede ser nil cuando
// Kafka está deshabilitado en el despliegue.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		publisher:   publisher,
		log:         log,
	}
}

// MovementInput entrada para registrar un movimiento de inventario.
// Quantity es el delta con signo: IN exige positivo, OUT exige negativo,
// ADJUST admite ambos signos pero nunca cero.
type MovementInput struct {
	CompanyID string
	UserID    string
	ProductID string
	Type      string
	Quantity  int64
	Notes     string
}

// ApplyMovement valida la entrada, inicia una transacción, bloquea la fila
// del producto y registra el asiento con su cadena before/after. Si el
// resultado dejara el stock en negativo, la transacción se revierte con
// ErrInsufficientStock (el libro jamás registra stock negativo).
func (uc *LedgerUseCase) ApplyMovement(ctx context.Context, input MovementInput) (*entity.StockMovement, error) {
	switch input.Type {
	case entity.MovementTypeIN:
		if input.Quantity <= 0 {
			return nil, fmt.Errorf("%w: movimiento IN requiere cantidad positiva", domain.ErrInvalidInput)
		}
	case entity.MovementTypeOUT:
		if input.Quantity >= 0 {
			return nil, fmt.Errorf("%w: movimiento OUT requiere cantidad negativa", domain.ErrInvalidInput)
		}
	case entity.MovementTypeADJUST:
		if input.Quantity == 0 {
			return nil, fmt.Errorf("%w: movimiento ADJUST no puede ser cero", domain.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, input.Type)
	}
	if input.ProductID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}

	// Validar que el producto exista y sea de la empresa antes de abrir tx
	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, input.ProductID)
	}
	if product.CompanyID != input.CompanyID {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	var created *entity.StockMovement

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		mov, err := applyInTx(movRepo, productRepo, applyParams{
			productID:   input.ProductID,
			movType:     input.Type,
			quantity:    input.Quantity,
			performedBy: input.UserID,
			notes:       input.Notes,
			now:         now,
		})
		if err != nil {
			return err
		}
		created = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.StockMovementsTotal.WithLabelValues(input.Type).Inc()
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, created.ProductID, newMovementRecordedEvent(created)); err != nil {
			uc.log.Warn().Err(err).Str("movement_id", created.ID).Msg("no se pudo publicar el evento de asiento")
		}
	}
	return created, nil
}

// applyParams parámetros internos de un asiento dentro de una tx abierta.
type applyParams struct {
	productID        string
	movType          string
	quantity         int64
	performedBy      string
	linkedShipmentID *string
	notes            string
	now              time.Time
}

// applyInTx bloquea la fila del producto, calcula la cadena before/after y
// persiste asiento + stock cacheado usando los repositorios de la tx del
// caller. Lo comparte el ajuste manual y el reconciliador de envíos.
func applyInTx(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	p applyParams,
) (*entity.StockMovement, error) {
	// Bloquea la fila del producto (SELECT FOR UPDATE): serializa todos los
	// asientos de este producto y hace fiable la cadena before/after.
	product, err := productRepo.GetForUpdate(p.productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, p.productID)
	}

	before := product.OnHandQuantity
	after := before + p.quantity
	if after < 0 {
		return nil, fmt.Errorf("%w: producto %s tiene %d, movimiento requiere %d",
			domain.ErrInsufficientStock, product.SKU, before, -p.quantity)
	}

	if err := productRepo.UpdateOnHand(p.productID, after); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		ProductID:        p.productID,
		Type:             p.movType,
		QuantityChange:   p.quantity,
		QuantityBefore:   before,
		QuantityAfter:    after,
		PerformedAt:      p.now,
		PerformedBy:      p.performedBy,
		LinkedShipmentID: p.linkedShipmentID,
		Notes:            p.notes,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ApplyOUTForShipmentInTx registra la salida de inventario de una línea de
// envío usando los repositorios del caller (misma transacción del
// reconciliador de envíos). linkedShipmentID enlaza el asiento con su envío.
func ApplyOUTForShipmentInTx(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	productID, userID, shipmentID string,
	quantity int64,
	now time.Time,
) (*entity.StockMovement, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: cantidad de envío debe ser positiva", domain.ErrInvalidInput)
	}
	sid := shipmentID
	return applyInTx(movRepo, productRepo, applyParams{
		productID:        productID,
		movType:          entity.MovementTypeOUT,
		quantity:         -quantity,
		performedBy:      userID,
		linkedShipmentID: &sid,
		now:              now,
	})
}

// CancelMovement elimina el asiento indicado y restaura el stock cacheado a
// QuantityBefore. Solo se permite sobre el asiento MÁS RECIENTE del producto:
// si existen asientos posteriores la cadena before/after quedaría rota y la
// operación falla con ErrLinkedEntryExists (corregir con un movimiento
// compensatorio). Los asientos enlazados a un envío tampoco se cancelan aquí.
func (uc *LedgerUseCase) CancelMovement(ctx context.Context, companyID, userID, movementID string) error {
	if movementID == "" {
		return fmt.Errorf("%w: movement_id requerido", domain.ErrInvalidInput)
	}
	return uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		mov, err := movRepo.GetByID(movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, movementID)
		}
		if mov.LinkedShipmentID != nil {
			return fmt.Errorf("%w: el asiento pertenece al envío %s, use un movimiento compensatorio",
				domain.ErrInvalidInput, *mov.LinkedShipmentID)
		}

		// Bloquea el producto antes de comparar contra el último asiento:
		// sin el lock otro asiento podría colarse entre la comparación y el delete.
		product, err := productRepo.GetForUpdate(mov.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, mov.ProductID)
		}
		if product.CompanyID != companyID {
			return domain.ErrForbidden
		}

		latestID, err := movRepo.LatestIDForProduct(mov.ProductID)
		if err != nil {
			return err
		}
		if latestID != mov.ID {
			return fmt.Errorf("%w: el asiento %s no es el último del producto %s",
				domain.ErrLinkedEntryExists, mov.ID, product.SKU)
		}
		// El último asiento debe cerrar la cadena contra el stock cacheado.
		// Si no coincide, existe un asiento posterior cuyo delta se perdería
		// al restaurar quantity_before: se rechaza bajo el mismo lock.
		if mov.QuantityAfter != product.OnHandQuantity {
			return fmt.Errorf("%w: el asiento %s no cierra la cadena del producto %s (after %d, stock %d)",
				domain.ErrLinkedEntryExists, mov.ID, product.SKU, mov.QuantityAfter, product.OnHandQuantity)
		}

		if err := productRepo.UpdateOnHand(mov.ProductID, mov.QuantityBefore); err != nil {
			return err
		}
		return movRepo.Delete(mov.ID)
	})
}

// ListMovements lista los asientos de un producto, más reciente primero.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, companyID, productID string, page dto.PageRequest) ([]*entity.StockMovement, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	return uc.movRepo.ListByProduct(productID, page.Limit, page.Offset)
}
