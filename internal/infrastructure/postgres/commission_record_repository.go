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

var _ repository.CommissionRecordRepository = (*CommissionRecordRepo)(nil)

// CommissionRecordRepo persistencia de liquidaciones de comisión sobre
// PostgreSQL. UNIQUE sobre order_id: una liquidación por orden, decidida por
// la BD aunque dos liquidaciones corran a la vez.
type CommissionRecordRepo struct {
	q Querier
}

// NewCommissionRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCommissionRecordRepository(q Querier) *CommissionRecordRepo {
	return &CommissionRecordRepo{q: q}
}

// Create persiste la liquidación (inmutable: sin UPDATE ni DELETE).
func (r *CommissionRecordRepo) Create(record *entity.CommissionRecord) error {
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO commission_records (id, order_id, base_price, margin_rate, commission_rate, selling_price, affiliate_amount, platform_amount, currency, rounding_mode, corrects, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		record.ID, record.OrderID, record.BasePrice, record.MarginRate, record.CommissionRate,
		record.SellingPrice, record.AffiliateAmount, record.PlatformAmount,
		record.Currency, record.RoundingMode, record.Corrects, record.CreatedAt, record.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: la orden %s ya tiene liquidación", domain.ErrDuplicate, record.OrderID)
		}
		return fmt.Errorf("insert commission record: %w", err)
	}
	return nil
}

// GetByOrderID obtiene la liquidación de una orden (nil si no existe).
func (r *CommissionRecordRepo) GetByOrderID(orderID string) (*entity.CommissionRecord, error) {
	var rec entity.CommissionRecord
	err := r.q.QueryRow(context.Background(), `
		SELECT id, order_id, base_price, margin_rate, commission_rate, selling_price, affiliate_amount, platform_amount, currency, rounding_mode, corrects, created_at, created_by
		FROM commission_records WHERE order_id = $1`,
		orderID,
	).Scan(
		&rec.ID, &rec.OrderID, &rec.BasePrice, &rec.MarginRate, &rec.CommissionRate,
		&rec.SellingPrice, &rec.AffiliateAmount, &rec.PlatformAmount,
		&rec.Currency, &rec.RoundingMode, &rec.Corrects, &rec.CreatedAt, &rec.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get commission record: %w", err)
	}
	return &rec, nil
}
