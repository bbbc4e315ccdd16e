package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/verone/commerce-core/internal/application/dto"
	"github.com/verone/commerce-core/internal/application/stock"
	"github.com/verone/commerce-core/internal/domain/entity"
	"github.com/verone/commerce-core/pkg/metrics"
)

// StockHandler maneja las peticiones HTTP del libro de inventario y las
// alertas derivadas (protegido).
type StockHandler struct {
	ledger *stock.LedgerUseCase
	alerts *stock.AlertsUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *stock.LedgerUseCase, alerts *stock.AlertsUseCase) *StockHandler {
	return &StockHandler{ledger: ledger, alerts: alerts}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:               m.ID,
		ProductID:        m.ProductID,
		Type:             m.Type,
		QuantityChange:   m.QuantityChange,
		QuantityBefore:   m.QuantityBefore,
		QuantityAfter:    m.QuantityAfter,
		PerformedAt:      m.PerformedAt,
		PerformedBy:      m.PerformedBy,
		LinkedShipmentID: m.LinkedShipmentID,
		Notes:            m.Notes,
	}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento manual de inventario
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, movement_type (IN/OUT/ADJUST), quantity_change con signo, notes"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RegisterMovement(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.ledger.ApplyMovement(c.Context(), stock.MovementInput{
		CompanyID: companyID,
		UserID:    userID,
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Notes:     in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// ListMovements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true   "ID del producto"
// @Param        limit       query  int     false  "Máx. resultados (default 20)"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	productID := c.Query("product_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id requerido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}

	movements, err := h.ledger.ListMovements(c.Context(), companyID, productID, page)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// CancelMovement godoc
// @Summary      Cancelar el último asiento de un producto
// @Description  Solo el asiento más reciente admite cancelación directa; los
//	anteriores requieren un movimiento compensatorio ADJUST.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id} [delete]
func (h *StockHandler) CancelMovement(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.ledger.CancelMovement(c.Context(), companyID, userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetAlerts godoc
// @Summary      Alertas de stock derivadas
// @Description  Calculadas en el momento de la lectura: faltantes con demanda
//	abierta, sin stock y stock bajo, con marcaje de compras abiertas.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto (repetible)"
// @Success      200  {array}   dto.StockAlertDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/alerts [get]
func (h *StockHandler) GetAlerts(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var productIDs []string
	if q := c.Query("product_id"); q != "" {
		productIDs = append(productIDs, q)
	}

	alerts, err := h.alerts.ComputeAlerts(c.Context(), companyID, productIDs)
	if err != nil {
		metrics.AlertComputeFailures.Inc()
		return respondError(c, err)
	}

	out := make([]dto.StockAlertDTO, 0, len(alerts))
	for _, a := range alerts {
		item := dto.StockAlertDTO{
			ProductID:        a.ProductID,
			SKU:              a.SKU,
			ProductName:      a.ProductName,
			AlertType:        a.Type,
			Severity:         a.Severity,
			CurrentStock:     a.CurrentStock,
			MinStock:         a.MinStock,
			ShortageQty:      a.ShortageQty,
			IsInDraft:        a.IsInDraft,
			QuantityInDraft:  a.QuantityInDraft,
			DraftOrderID:     a.DraftOrderID,
			DraftOrderNumber: a.DraftOrderNumber,
		}
		for _, b := range a.BlockedOrders {
			item.BlockedOrders = append(item.BlockedOrders, dto.BlockedOrderDTO{
				OrderID:     b.OrderID,
				OrderNumber: b.OrderNumber,
				Quantity:    b.Quantity,
			})
		}
		out = append(out, item)
	}
	return c.JSON(fiber.Map{"total": len(out), "alerts": out})
}
