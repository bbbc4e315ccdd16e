package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verone/commerce-core/internal/domain"
	"github.com/verone/commerce-core/internal/domain/entity"
	"github.com/verone/commerce-core/internal/domain/repository"
	"github.com/verone/commerce-core/pkg/metrics"
)

// SettleOrder congela la liquidación de comisiones de una orden del canal de
// afiliados: UN registro inmutable por orden (UNIQUE sobre order_id). Aplica
// el mismo calculador y el mismo redondeo que la vista previa de precios, de
// modo que lo cotizado y lo liquidado nunca descuadran.
//
// Requiere orden en shipped o delivered con tasas de margen y comisión.
// Una segunda liquidación falla con ErrDuplicate; la corrección de un
// registro crea uno nuevo que referencia el original, nunca lo muta.
func (uc *OrderUseCase) SettleOrder(ctx context.Context, companyID, userID, orderID string) (*entity.CommissionRecord, error) {
	var (
		record  *entity.CommissionRecord
		settled *entity.SalesOrder
	)

	err := uc.txRunner.RunSettlement(ctx, func(
		orderRepo repository.SalesOrderRepository,
		commissionRepo repository.CommissionRecordRepository,
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
		if o.Status != entity.OrderStatusShipped && o.Status != entity.OrderStatusDelivered {
			return fmt.Errorf("%w: orden %s en estado %s no admite liquidación", domain.ErrInvalidOrderState, o.OrderNumber, o.Status)
		}
		if o.MarginRate == nil || o.CommissionRate == nil {
			return fmt.Errorf("%w: la orden %s no tiene condiciones de afiliado", domain.ErrInvalidInput, o.OrderNumber)
		}

		existing, err := commissionRepo.GetByOrderID(o.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: la orden %s ya tiene liquidación %s", domain.ErrDuplicate, o.OrderNumber, existing.ID)
		}

		selling, err := uc.calc.SellingPrice(o.TotalHT, *o.MarginRate)
		if err != nil {
			return err
		}
		affiliate, platform, err := uc.calc.SplitCommission(selling, *o.CommissionRate)
		if err != nil {
			return err
		}

		record = &entity.CommissionRecord{
			ID:              uuid.New().String(),
			OrderID:         o.ID,
			BasePrice:       o.TotalHT,
			MarginRate:      *o.MarginRate,
			CommissionRate:  *o.CommissionRate,
			SellingPrice:    selling,
			AffiliateAmount: affiliate,
			PlatformAmount:  platform,
			Currency:        o.Currency,
			RoundingMode:    uc.calc.RoundingMode(),
			CreatedAt:       time.Now().UTC(),
			CreatedBy:       userID,
		}
		settled = o
		return commissionRepo.Create(record)
	})
	if err != nil {
		return nil, err
	}

	metrics.SettlementsTotal.Inc()
	uc.publish(ctx, settled.ID, newOrderSettledEvent(settled, record))
	uc.log.Info().
		Str("order_number", settled.OrderNumber).
		Str("selling_price", record.SellingPrice.String()).
		Str("affiliate_amount", record.AffiliateAmount.String()).
		Msg("liquidación de comisiones congelada")
	return record, nil
}
