package stock

import (
	"context"
	"fmt"
	"sort"

	"github.com/verone/commerce-core/internal/domain"
	"github.com/verone/commerce-core/internal/domain/entity"
	"github.com/verone/commerce-core/internal/domain/repository"
)

// AlertsUseCase deriva alertas de stock en el momento de la lectura.
// Nunca se persisten: se calculan comparando stock cacheado, umbral mínimo,
// demanda abierta de ventas y cobertura abierta de compras.
type AlertsUseCase struct {
	productRepo       repository.ProductRepository
	salesOrderRepo    repository.SalesOrderRepository
	purchaseOrderRepo repository.PurchaseOrderRepository
	defaultThreshold  int64
}

// NewAlertsUseCase construye el caso de uso. defaultThreshold se usa para
// productos sin umbral propio (MinStockThreshold == 0).
func NewAlertsUseCase(
	productRepo repository.ProductRepository,
	salesOrderRepo repository.SalesOrderRepository,
	purchaseOrderRepo repository.PurchaseOrderRepository,
	defaultThreshold int64,
) *AlertsUseCase {
	return &AlertsUseCase{
		productRepo:       productRepo,
		salesOrderRepo:    salesOrderRepo,
		purchaseOrderRepo: purchaseOrderRepo,
		defaultThreshold:  defaultThreshold,
	}
}

// ComputeAlerts calcula las alertas de la empresa, opcionalmente filtradas
// por productos. A lo sumo una alerta por producto, la más severa:
//
//	stock == 0 y demanda abierta  → no_stock_but_ordered (critical)
//	stock == 0                    → out_of_stock (critical)
//	stock  < umbral mínimo        → low_stock (warning)
//
// Si una compra abierta ya cubre el faltante la alerta lo marca con
// is_in_draft, pero NUNCA se suprime: la mercancía todavía no llegó.
// Cualquier fallo de lectura envuelve ErrComputationFailed para que la capa
// HTTP degrade a "alertas no disponibles" en vez de romper la vista.
func (uc *AlertsUseCase) ComputeAlerts(ctx context.Context, companyID string, productIDs []string) ([]*entity.StockAlert, error) {
	products, err := uc.productRepo.ListForAlerts(companyID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: lectura de productos: %v", domain.ErrComputationFailed, err)
	}

	demand, err := uc.salesOrderRepo.OpenDemandByProduct(companyID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: lectura de demanda abierta: %v", domain.ErrComputationFailed, err)
	}
	demandByProduct := make(map[string][]repository.OpenDemand)
	for _, d := range demand {
		demandByProduct[d.ProductID] = append(demandByProduct[d.ProductID], d)
	}

	coverage, err := uc.purchaseOrderRepo.OpenCoverageByProduct(companyID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: lectura de cobertura de compras: %v", domain.ErrComputationFailed, err)
	}

	alerts := make([]*entity.StockAlert, 0, len(products))
	for _, p := range products {
		threshold := p.MinStockThreshold
		if threshold == 0 {
			threshold = uc.defaultThreshold
		}

		var alert *entity.StockAlert
		switch {
		case p.OnHandQuantity == 0 && len(demandByProduct[p.ID]) > 0:
			open := demandByProduct[p.ID]
			// Demanda más antigua primero
			sort.SliceStable(open, func(i, j int) bool {
				return open[i].CreatedAt.Before(open[j].CreatedAt)
			})
			blocked := make([]entity.BlockedOrder, 0, len(open))
			var shortage int64
			for _, d := range open {
				blocked = append(blocked, entity.BlockedOrder{
					OrderID:     d.OrderID,
					OrderNumber: d.OrderNumber,
					Quantity:    d.Remaining,
				})
				shortage += d.Remaining
			}
			alert = &entity.StockAlert{
				Type:          entity.AlertTypeNoStockButOrdered,
				Severity:      entity.AlertSeverityCritical,
				BlockedOrders: blocked,
				ShortageQty:   shortage,
			}
		case p.OnHandQuantity == 0:
			alert = &entity.StockAlert{
				Type:     entity.AlertTypeOutOfStock,
				Severity: entity.AlertSeverityCritical,
			}
		case p.OnHandQuantity < threshold:
			alert = &entity.StockAlert{
				Type:        entity.AlertTypeLowStock,
				Severity:    entity.AlertSeverityWarning,
				ShortageQty: threshold - p.OnHandQuantity,
			}
		default:
			continue
		}

		alert.ProductID = p.ID
		alert.SKU = p.SKU
		alert.ProductName = p.Name
		alert.CurrentStock = p.OnHandQuantity
		alert.MinStock = threshold

		if cov, ok := coverage[p.ID]; ok {
			alert.IsInDraft = true
			alert.QuantityInDraft = cov.Quantity
			alert.DraftOrderID = cov.OrderID
			alert.DraftOrderNumber = cov.OrderNumber
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}
