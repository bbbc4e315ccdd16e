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

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

const orderColumns = `id, company_id, order_number, status, currency, total_ht, total_ttc, margin_rate, commission_rate, completion_pct,
	created_at, updated_at, confirmed_at, confirmed_by, shipped_at, shipped_by, delivered_at, delivered_by, cancelled_at`

// SalesOrderRepo implementación del puerto SalesOrderRepository sobre PostgreSQL.
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

func scanOrder(row pgx.Row) (*entity.SalesOrder, error) {
	var o entity.SalesOrder
	err := row.Scan(
		&o.ID, &o.CompanyID, &o.OrderNumber, &o.Status, &o.Currency,
		&o.TotalHT, &o.TotalTTC, &o.MarginRate, &o.CommissionRate, &o.CompletionPct,
		&o.CreatedAt, &o.UpdatedAt, &o.ConfirmedAt, &o.ConfirmedBy,
		&o.ShippedAt, &o.ShippedBy, &o.DeliveredAt, &o.DeliveredBy, &o.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}

// Create persiste la orden con sus líneas.
func (r *SalesOrderRepo) Create(order *entity.SalesOrder) error {
	ctx := context.Background()
	query := `
		INSERT INTO sales_orders (id, company_id, order_number, status, currency, total_ht, total_ttc, margin_rate, commission_rate, completion_pct, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.CompanyID, order.OrderNumber, order.Status, order.Currency,
		order.TotalHT, order.TotalTTC, order.MarginRate, order.CommissionRate,
		order.CompletionPct, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de orden %s", domain.ErrDuplicate, order.OrderNumber)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	for _, it := range order.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sales_order_items (id, order_id, product_id, quantity, quantity_shipped, waived_quantity, unit_price_ht)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.OrderID, it.ProductID, it.Quantity, it.QuantityShipped, it.WaivedQuantity, it.UnitPriceHT,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas.
func (r *SalesOrderRepo) GetByID(id string) (*entity.SalesOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sales_orders WHERE id = $1`
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil || o == nil {
		return o, err
	}
	if err := r.loadItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetForUpdate obtiene la orden bloqueando la cabecera (SELECT FOR UPDATE) y
// carga las líneas. Dos envíos concurrentes sobre la misma orden se
// serializan en este lock.
func (r *SalesOrderRepo) GetForUpdate(id string) (*entity.SalesOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sales_orders WHERE id = $1 FOR UPDATE`
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil || o == nil {
		return o, err
	}
	if err := r.loadItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *SalesOrderRepo) loadItems(o *entity.SalesOrder) error {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, order_id, product_id, quantity, quantity_shipped, waived_quantity, unit_price_ht
		FROM sales_order_items WHERE order_id = $1 ORDER BY id`,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.SalesOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.QuantityShipped, &it.WaivedQuantity, &it.UnitPriceHT); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, &it)
	}
	return rows.Err()
}

// UpdateStatus persiste estado + campos derivados en una sola escritura.
// El número de orden y los totales son inmutables: jamás se tocan aquí.
func (r *SalesOrderRepo) UpdateStatus(order *entity.SalesOrder) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE sales_orders SET
			status = $2, completion_pct = $3, updated_at = $4,
			confirmed_at = $5, confirmed_by = $6,
			shipped_at = $7, shipped_by = $8,
			delivered_at = $9, delivered_by = $10,
			cancelled_at = $11
		WHERE id = $1`,
		order.ID, order.Status, order.CompletionPct, order.UpdatedAt,
		order.ConfirmedAt, order.ConfirmedBy,
		order.ShippedAt, order.ShippedBy,
		order.DeliveredAt, order.DeliveredBy,
		order.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

// UpdateItemShipment persiste cantidades enviadas/exoneradas de una línea.
func (r *SalesOrderRepo) UpdateItemShipment(itemID string, quantityShipped, waivedQuantity int64) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE sales_order_items SET quantity_shipped = $2, waived_quantity = $3 WHERE id = $1`,
		itemID, quantityShipped, waivedQuantity,
	)
	if err != nil {
		return fmt.Errorf("update order item shipment: %w", err)
	}
	return nil
}

// OpenDemandByProduct lista la demanda abierta (órdenes confirmed o
// partially_shipped con cantidad pendiente), demanda más antigua primero.
func (r *SalesOrderRepo) OpenDemandByProduct(companyID string, productIDs []string) ([]repository.OpenDemand, error) {
	query := `
		SELECT i.product_id, o.id, o.order_number,
		       i.quantity - i.quantity_shipped - i.waived_quantity AS remaining,
		       o.created_at
		FROM sales_order_items i
		JOIN sales_orders o ON o.id = i.order_id
		WHERE o.company_id = $1
		  AND o.status IN ('confirmed', 'partially_shipped')
		  AND i.quantity - i.quantity_shipped - i.waived_quantity > 0`
	args := []any{companyID}
	if len(productIDs) > 0 {
		query += ` AND i.product_id = ANY($2)`
		args = append(args, productIDs)
	}
	query += ` ORDER BY o.created_at ASC, o.id ASC`

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("open demand: %w", err)
	}
	defer rows.Close()

	var out []repository.OpenDemand
	for rows.Next() {
		var d repository.OpenDemand
		if err := rows.Scan(&d.ProductID, &d.OrderID, &d.OrderNumber, &d.Remaining, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan open demand: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
