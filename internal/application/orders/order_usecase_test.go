package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verone/commerce-core/internal/application/dto"
	"github.com/verone/commerce-core/internal/domain"
	"github.com/verone/commerce-core/internal/domain/entity"
	"github.com/verone/commerce-core/internal/domain/pricing"
	"github.com/verone/commerce-core/internal/domain/repository"
	"github.com/verone/commerce-core/pkg/logger"
)

// ──────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────

type memProductRepo struct {
	products map[string]*entity.Product
}

func (f *memProductRepo) Create(p *entity.Product) error              { f.products[p.ID] = p; return nil }
func (f *memProductRepo) GetByID(id string) (*entity.Product, error)  { return f.products[id], nil }
func (f *memProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return f.products[id], nil
}
func (f *memProductRepo) UpdateOnHand(productID string, quantity int64) error {
	f.products[productID].OnHandQuantity = quantity
	return nil
}
func (f *memProductRepo) ListForAlerts(string, []string) ([]*entity.Product, error) {
	return nil, nil
}

type memMovementRepo struct {
	movements []*entity.StockMovement
}

func (f *memMovementRepo) Create(m *entity.StockMovement) error {
	f.movements = append(f.movements, m)
	return nil
}
func (f *memMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range f.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}
func (f *memMovementRepo) LatestIDForProduct(productID string) (string, error) {
	for i := len(f.movements) - 1; i >= 0; i-- {
		if f.movements[i].ProductID == productID {
			return f.movements[i].ID, nil
		}
	}
	return "", nil
}
func (f *memMovementRepo) Delete(id string) error { return nil }
func (f *memMovementRepo) ListByProduct(string, int, int) ([]*entity.StockMovement, error) {
	return f.movements, nil
}

type memOrderRepo struct {
	orders map[string]*entity.SalesOrder
}

func (f *memOrderRepo) Create(o *entity.SalesOrder) error             { f.orders[o.ID] = o; return nil }
func (f *memOrderRepo) GetByID(id string) (*entity.SalesOrder, error) { return f.orders[id], nil }
func (f *memOrderRepo) GetForUpdate(id string) (*entity.SalesOrder, error) {
	return f.orders[id], nil
}
func (f *memOrderRepo) UpdateStatus(o *entity.SalesOrder) error         { return nil }
func (f *memOrderRepo) UpdateItemShipment(string, int64, int64) error   { return nil }
func (f *memOrderRepo) OpenDemandByProduct(string, []string) ([]repository.OpenDemand, error) {
	return nil, nil
}

type memShipmentRepo struct {
	shipments []*entity.Shipment
}

func (f *memShipmentRepo) Create(s *entity.Shipment) error {
	for _, existing := range f.shipments {
		if existing.RequestID == s.RequestID {
			return domain.ErrDuplicate
		}
	}
	f.shipments = append(f.shipments, s)
	return nil
}
func (f *memShipmentRepo) GetByID(id string) (*entity.Shipment, error) {
	for _, s := range f.shipments {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}
func (f *memShipmentRepo) GetByRequestID(requestID string) (*entity.Shipment, error) {
	for _, s := range f.shipments {
		if s.RequestID == requestID {
			return s, nil
		}
	}
	return nil, nil
}
func (f *memShipmentRepo) ExistsForOrder(orderID string) (bool, error) {
	for _, s := range f.shipments {
		if s.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

type memCommissionRepo struct {
	records map[string]*entity.CommissionRecord // por order_id
}

func (f *memCommissionRepo) Create(r *entity.CommissionRecord) error {
	if _, ok := f.records[r.OrderID]; ok {
		return domain.ErrDuplicate
	}
	f.records[r.OrderID] = r
	return nil
}
func (f *memCommissionRepo) GetByOrderID(orderID string) (*entity.CommissionRecord, error) {
	return f.records[orderID], nil
}

// memTxRunner pasa los repos tal cual: las pruebas verifican la lógica de
// negocio, no el rollback físico.
type memTxRunner struct {
	orderRepo      *memOrderRepo
	shipmentRepo   *memShipmentRepo
	movRepo        *memMovementRepo
	productRepo    *memProductRepo
	commissionRepo *memCommissionRepo

	failOrderRuns int // devuelve ErrConcurrencyConflict en las próximas N llamadas
	orderRuns     int
}

func (f *memTxRunner) RunOrder(ctx context.Context, fn func(
	orderRepo repository.SalesOrderRepository,
	shipmentRepo repository.ShipmentRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	f.orderRuns++
	if f.failOrderRuns > 0 {
		f.failOrderRuns--
		return fmt.Errorf("%w: could not serialize access", domain.ErrConcurrencyConflict)
	}
	return fn(f.orderRepo, f.shipmentRepo, f.movRepo, f.productRepo)
}

func (f *memTxRunner) RunSettlement(ctx context.Context, fn func(
	orderRepo repository.SalesOrderRepository,
	commissionRepo repository.CommissionRecordRepository,
) error) error {
	return fn(f.orderRepo, f.commissionRepo)
}

type fixture struct {
	uc      *OrderUseCase
	tx      *memTxRunner
	product *entity.Product
}

func newFixture(t *testing.T, onHand int64) *fixture {
	t.Helper()
	product := &entity.Product{
		ID:             uuid.New().String(),
		CompanyID:      "company-1",
		SKU:            "VER-CANAPE-01",
		Name:           "Canapé Torino",
		OnHandQuantity: onHand,
	}
	tx := &memTxRunner{
		orderRepo:      &memOrderRepo{orders: map[string]*entity.SalesOrder{}},
		shipmentRepo:   &memShipmentRepo{},
		movRepo:        &memMovementRepo{},
		productRepo:    &memProductRepo{products: map[string]*entity.Product{product.ID: product}},
		commissionRepo: &memCommissionRepo{records: map[string]*entity.CommissionRecord{}},
	}
	uc := NewOrderUseCase(
		tx, tx.orderRepo, tx.productRepo, tx.shipmentRepo,
		pricing.NewCalculator(2), decimal.NewFromInt(20),
		nil, nil, logger.Nop(),
	)
	return &fixture{uc: uc, tx: tx, product: product}
}

func (f *fixture) createOrder(t *testing.T, quantity int64, rates bool) *entity.SalesOrder {
	t.Helper()
	req := dto.CreateOrderRequest{
		Currency: "EUR",
		Items: []dto.OrderItemRequest{
			{ProductID: f.product.ID, Quantity: quantity, UnitPriceHT: decimal.NewFromInt(10)},
		},
	}
	if rates {
		margin := decimal.NewFromInt(15)
		commission := decimal.NewFromInt(5)
		req.MarginRate = &margin
		req.CommissionRate = &commission
	}
	o, err := f.uc.CreateOrder(context.Background(), "company-1", "user-1", req)
	require.NoError(t, err)
	return o
}

// ──────────────────────────────────────────────
// Creación y ciclo de vida
// ──────────────────────────────────────────────

func TestCreateOrder_CalculaTotalesYGeneraNumero(t *testing.T) {
	f := newFixture(t, 100)

	o, err := f.uc.CreateOrder(context.Background(), "company-1", "user-1", dto.CreateOrderRequest{
		Currency: "EUR",
		Items: []dto.OrderItemRequest{
			{ProductID: f.product.ID, Quantity: 3, UnitPriceHT: decimal.RequireFromString("10.50")},
			{ProductID: f.product.ID, Quantity: 1, UnitPriceHT: decimal.RequireFromString("5.00")},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDraft, o.Status)
	assert.True(t, o.TotalHT.Equal(decimal.RequireFromString("36.50")), "total HT: %s", o.TotalHT)
	assert.True(t, o.TotalTTC.Equal(decimal.RequireFromString("43.80")), "total TTC con IVA 20%%: %s", o.TotalTTC)
	assert.Regexp(t, `^SO-\d{8}-`, o.OrderNumber, "número generado estilo SO-<fecha>-<sufijo>")
}

func TestCreateOrder_SinLineasFalla(t *testing.T) {
	f := newFixture(t, 100)

	_, err := f.uc.CreateOrder(context.Background(), "company-1", "user-1", dto.CreateOrderRequest{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateOrder_MargenInvalidoFalla(t *testing.T) {
	f := newFixture(t, 100)
	margin := decimal.NewFromInt(100)

	_, err := f.uc.CreateOrder(context.Background(), "company-1", "user-1", dto.CreateOrderRequest{
		MarginRate: &margin,
		Items: []dto.OrderItemRequest{
			{ProductID: f.product.ID, Quantity: 1, UnitPriceHT: decimal.NewFromInt(10)},
		},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidMarginRate,
		"una orden de afiliado con margen >= 100 no debe existir")
}

func TestConfirm_DesdeDraft(t *testing.T) {
	f := newFixture(t, 100)
	o := f.createOrder(t, 10, false)

	confirmed, err := f.uc.Confirm(context.Background(), "company-1", "user-1", o.ID)

	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, "user-1", confirmed.ConfirmedBy)
}

func TestCancel_ConEnvioRegistradoFalla(t *testing.T) {
	f := newFixture(t, 100)
	o := f.createOrder(t, 10, false)
	_, err := f.uc.Confirm(context.Background(), "company-1", "user-1", o.ID)
	require.NoError(t, err)

	_, err = f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	_, err = f.uc.Cancel(context.Background(), "company-1", o.ID)

	assert.ErrorIs(t, err, domain.ErrCannotCancelShippedOrder)
}

func TestClose_ConRemanenteSinWaiverFalla(t *testing.T) {
	f := newFixture(t, 100)
	o := f.createOrder(t, 10, false)
	_, err := f.uc.Confirm(context.Background(), "company-1", "user-1", o.ID)
	require.NoError(t, err)

	_, err = f.uc.Close(context.Background(), "company-1", "user-1", o.ID, false)

	assert.ErrorIs(t, err, domain.ErrCannotCloseWithRemainder)
}

func TestClose_ConWaiverExoneraYSinMovimientos(t *testing.T) {
	f := newFixture(t, 100)
	o := f.createOrder(t, 10, false)
	_, err := f.uc.Confirm(context.Background(), "company-1", "user-1", o.ID)
	require.NoError(t, err)
	_, err = f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	movementsBefore := len(f.tx.movRepo.movements)

	closed, err := f.uc.Close(context.Background(), "company-1", "user-1", o.ID, true)

	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusShipped, closed.Status)
	assert.Equal(t, int64(6), closed.Items[0].WaivedQuantity, "el remanente queda exonerado para auditoría")
	assert.Len(t, f.tx.movRepo.movements, movementsBefore, "cerrar no genera movimiento de inventario")
}

func TestMarkDelivered_SoloDesdeShipped(t *testing.T) {
	f := newFixture(t, 100)
	o := f.createOrder(t, 10, false)

	_, err := f.uc.MarkDelivered(context.Background(), "company-1", "user-1", o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.uc.Confirm(context.Background(), "company-1", "user-1", o.ID)
	require.NoError(t, err)
	_, err = f.uc.CreateShipment(context.Background(), "company-1", "user-1", o.ID, dto.CreateShipmentRequest{
		RequestID: "req-1",
		Lines:     []dto.ShipmentLineRequest{{ProductID: f.product.ID, Quantity: 10}},
	})
	require.NoError(t, err)

	delivered, err := f.uc.MarkDelivered(context.Background(), "company-1", "user-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredAt)
}

func TestGetOrder_OtraEmpresaForbidden(t *testing.T) {
	f := newFixture(t, 100)
	o := f.createOrder(t, 10, false)

	_, err := f.uc.GetOrder(context.Background(), "company-2", o.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}
