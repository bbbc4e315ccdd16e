package repository

import "github.com/verone/commerce-core/internal/domain/entity"

// CommissionRecordRepository define el puerto de persistencia para
// liquidaciones de comisión. Inmutables: sin Update ni Delete; una
// corrección crea un registro nuevo que referencia el original.
type CommissionRecordRepository interface {
	Create(record *entity.CommissionRecord) error
	GetByOrderID(orderID string) (*entity.CommissionRecord, error)
}
