package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/verone/commerce-core/internal/domain"
	"github.com/verone/commerce-core/internal/domain/entity"
	"github.com/verone/commerce-core/internal/domain/repository"
)

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

// ShipmentRepo implementación del puerto ShipmentRepository sobre PostgreSQL.
// La restricción UNIQUE sobre request_id es la garantía transaccional de
// idempotencia: dos reintentos simultáneos no pueden insertar los dos.
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

// Create persiste el envío con sus líneas.
func (r *ShipmentRepo) Create(shipment *entity.Shipment) error {
	ctx := context.Background()
	_, err := r.q.Exec(ctx, `
		INSERT INTO shipments (id, order_id, request_id, tracking_number, shipped_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		shipment.ID, shipment.OrderID, shipment.RequestID, shipment.TrackingNumber,
		shipment.ShippedAt, shipment.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: request_id %s", domain.ErrDuplicate, shipment.RequestID)
		}
		return fmt.Errorf("insert shipment: %w", err)
	}
	for _, it := range shipment.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO shipment_items (shipment_id, product_id, quantity)
			VALUES ($1, $2, $3)`,
			it.ShipmentID, it.ProductID, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert shipment item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un envío con sus líneas.
func (r *ShipmentRepo) GetByID(id string) (*entity.Shipment, error) {
	return r.getBy(`id = $1`, id)
}

// GetByRequestID obtiene el envío asociado a un request id de idempotencia
// (nil si el request nunca se procesó).
func (r *ShipmentRepo) GetByRequestID(requestID string) (*entity.Shipment, error) {
	return r.getBy(`request_id = $1`, requestID)
}

func (r *ShipmentRepo) getBy(where string, arg any) (*entity.Shipment, error) {
	var s entity.Shipment
	err := r.q.QueryRow(context.Background(), `
		SELECT id, order_id, request_id, tracking_number, shipped_at, created_by
		FROM shipments WHERE `+where,
		arg,
	).Scan(&s.ID, &s.OrderID, &s.RequestID, &s.TrackingNumber, &s.ShippedAt, &s.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}

	rows, err := r.q.Query(context.Background(), `
		SELECT shipment_id, product_id, quantity
		FROM shipment_items WHERE shipment_id = $1 ORDER BY product_id`,
		s.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("load shipment items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.ShipmentItem
		if err := rows.Scan(&it.ShipmentID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan shipment item: %w", err)
		}
		s.Items = append(s.Items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ExistsForOrder indica si la orden ya tiene algún envío persistido.
func (r *ShipmentRepo) ExistsForOrder(orderID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM shipments WHERE order_id = $1)`,
		orderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists shipment: %w", err)
	}
	return exists, nil
}
