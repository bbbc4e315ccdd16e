package postgres

import (
	"context"
	"fmt"

	"github.com/verone/commerce-core/internal/domain/entity"
	"github.com/verone/commerce-core/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo lectura de cobertura de compras abiertas sobre PostgreSQL.
// Este servicio NO edita órdenes de compra; solo las consulta para el
// tracking de alertas.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// OpenCoverageByProduct devuelve, por producto, la cobertura abierta más
// antigua (draft o confirmed, no recibida ni cancelada).
func (r *PurchaseOrderRepo) OpenCoverageByProduct(companyID string, productIDs []string) (map[string]entity.PurchaseOrderCoverage, error) {
	query := `
		SELECT DISTINCT ON (i.product_id)
		       i.product_id, o.id, o.order_number, i.quantity, o.status = 'draft' AS is_draft, o.created_at
		FROM purchase_order_items i
		JOIN purchase_orders o ON o.id = i.order_id
		WHERE o.company_id = $1 AND o.status IN ('draft', 'confirmed')`
	args := []any{companyID}
	if len(productIDs) > 0 {
		query += ` AND i.product_id = ANY($2)`
		args = append(args, productIDs)
	}
	query += ` ORDER BY i.product_id, o.created_at ASC`

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("open purchase coverage: %w", err)
	}
	defer rows.Close()

	out := make(map[string]entity.PurchaseOrderCoverage)
	for rows.Next() {
		var c entity.PurchaseOrderCoverage
		if err := rows.Scan(&c.ProductID, &c.OrderID, &c.OrderNumber, &c.Quantity, &c.IsDraft, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase coverage: %w", err)
		}
		out[c.ProductID] = c
	}
	return out, rows.Err()
}
