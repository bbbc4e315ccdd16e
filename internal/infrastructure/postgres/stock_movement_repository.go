package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/verone/commerce-core/internal/domain/entity"
	"github.com/verone/commerce-core/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, movement_type, quantity_change, quantity_before, quantity_after, performed_at, performed_by, linked_shipment_id, notes`

// StockMovementRepo implementación del libro de inventario sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.ProductID, &m.Type, &m.QuantityChange,
		&m.QuantityBefore, &m.QuantityAfter, &m.PerformedAt, &m.PerformedBy,
		&m.LinkedShipmentID, &m.Notes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan movement: %w", err)
	}
	return &m, nil
}

// Create persiste un asiento del libro (inmutable: nunca habrá UPDATE).
// La columna seq (BIGSERIAL) no se incluye: la asigna la BD al insertar y es
// la que define la recencia entre asientos de un producto.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, movement_type, quantity_change, quantity_before, quantity_after, performed_at, performed_by, linked_shipment_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.Type, movement.QuantityChange,
		movement.QuantityBefore, movement.QuantityAfter, movement.PerformedAt,
		movement.PerformedBy, movement.LinkedShipmentID, movement.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	return scanMovement(r.q.QueryRow(context.Background(), query, id))
}

// LatestIDForProduct devuelve el id del último asiento del producto ("" si no
// hay ninguno). El orden es el de inserción bajo el lock del producto, dado
// por la secuencia seq (BIGSERIAL) que asigna la BD — nunca por performed_at:
// el reloj de aplicación puede desviarse entre instancias o colisionar.
func (r *StockMovementRepo) LatestIDForProduct(productID string) (string, error) {
	var id string
	err := r.q.QueryRow(context.Background(),
		`SELECT id FROM stock_movements WHERE product_id = $1 ORDER BY seq DESC LIMIT 1`,
		productID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("latest movement: %w", err)
	}
	return id, nil
}

// Delete elimina un asiento. Solo lo invoca la cancelación directa del último
// asiento de un producto, con la fila del producto bloqueada.
func (r *StockMovementRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	return nil
}

// ListByProduct lista los asientos de un producto, más reciente primero.
func (r *StockMovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE product_id = $1
		ORDER BY seq DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.Type, &m.QuantityChange,
			&m.QuantityBefore, &m.QuantityAfter, &m.PerformedAt, &m.PerformedBy,
			&m.LinkedShipmentID, &m.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
