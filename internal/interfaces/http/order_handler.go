package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/verone/commerce-core/internal/application/dto"
	"github.com/verone/commerce-core/internal/application/orders"
	"github.com/verone/commerce-core/internal/domain/entity"
)

// OrderHandler maneja las peticiones HTTP de órdenes de venta: creación,
// transiciones, envíos y liquidación (protegido).
type OrderHandler struct {
	uc *orders.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func toOrderResponse(o *entity.SalesOrder) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		Currency:       o.Currency,
		TotalHT:        o.TotalHT,
		TotalTTC:       o.TotalTTC,
		MarginRate:     o.MarginRate,
		CommissionRate: o.CommissionRate,
		CompletionPct:  o.CompletionPct,
		CreatedAt:      o.CreatedAt,
		ConfirmedAt:    o.ConfirmedAt,
		ShippedAt:      o.ShippedAt,
		DeliveredAt:    o.DeliveredAt,
		CancelledAt:    o.CancelledAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.OrderItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			QuantityShipped: it.QuantityShipped,
			WaivedQuantity:  it.WaivedQuantity,
			RemainingToShip: it.RemainingToShip(),
			UnitPriceHT:     it.UnitPriceHT,
		})
	}
	return out
}

func toShipmentResponse(r *orders.ShipmentResult) dto.ShipmentResponse {
	out := dto.ShipmentResponse{
		ID:             r.Shipment.ID,
		OrderID:        r.Shipment.OrderID,
		OrderStatus:    r.OrderStatus,
		RequestID:      r.Shipment.RequestID,
		TrackingNumber: r.Shipment.TrackingNumber,
		ShippedAt:      r.Shipment.ShippedAt,
	}
	for _, it := range r.Shipment.Items {
		out.Items = append(out.Items, dto.ShipmentItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return out
}

// auth extrae companyID y userID o corta con 401.
func auth(c *fiber.Ctx) (companyID, userID string, ok bool) {
	companyID = GetCompanyID(c)
	userID = GetUserID(c)
	return companyID, userID, companyID != "" && userID != ""
}

// Create godoc
// @Summary      Crear orden de venta (draft)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Líneas, moneda y opcionalmente tasas de afiliado"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	companyID, userID, ok := auth(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	o, err := h.uc.CreateOrder(c.Context(), companyID, userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(o))
}

// GetByID godoc
// @Summary      Obtener orden con sus líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	companyID, _, ok := auth(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	o, err := h.uc.GetOrder(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(o))
}

// Confirm godoc
// @Summary      Confirmar orden (draft → confirmed)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/confirm [post]
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	companyID, userID, ok := auth(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	o, err := h.uc.Confirm(c.Context(), companyID, userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(o))
}

// CreateShipment godoc
// @Summary      Registrar envío parcial o total
// @Description  request_id deduplica reintentos tras timeout: un request_id ya
//	procesado devuelve el envío original con 200 en lugar de 201.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la orden"
// @Param        body  body  dto.CreateShipmentRequest  true  "request_id, tracking_number, líneas"
// @Success      201   {object}  dto.ShipmentResponse
// @Success      200   {object}  dto.ShipmentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/shipments [post]
func (h *OrderHandler) CreateShipment(c *fiber.Ctx) error {
	companyID, userID, ok := auth(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.CreateShipment(c.Context(), companyID, userID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if res.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(toShipmentResponse(res))
}

// Close godoc
// @Summary      Cerrar orden, con o sin exoneración del remanente
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true   "ID de la orden"
// @Param        body  body  dto.CloseOrderRequest   false  "waive_remainder"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/close [post]
func (h *OrderHandler) Close(c *fiber.Ctx) error {
	companyID, userID, ok := auth(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CloseOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	o, err := h.uc.Close(c.Context(), companyID, userID, c.Params("id"), in.WaiveRemainder)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(o))
}

// Cancel godoc
// @Summary      Anular orden sin envíos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	companyID, _, ok := auth(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	o, err := h.uc.Cancel(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(o))
}

// MarkDelivered godoc
// @Summary      Confirmar entrega (shipped → delivered)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/deliver [post]
func (h *OrderHandler) MarkDelivered(c *fiber.Ctx) error {
	companyID, userID, ok := auth(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	o, err := h.uc.MarkDelivered(c.Context(), companyID, userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(o))
}

// Settle godoc
// @Summary      Congelar liquidación de comisiones (canal afiliados)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      201  {object}  dto.CommissionRecordResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/settle [post]
func (h *OrderHandler) Settle(c *fiber.Ctx) error {
	companyID, userID, ok := auth(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	rec, err := h.uc.SettleOrder(c.Context(), companyID, userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CommissionRecordResponse{
		ID:              rec.ID,
		OrderID:         rec.OrderID,
		BasePrice:       rec.BasePrice,
		MarginRate:      rec.MarginRate,
		CommissionRate:  rec.CommissionRate,
		SellingPrice:    rec.SellingPrice,
		AffiliateAmount: rec.AffiliateAmount,
		PlatformAmount:  rec.PlatformAmount,
		Currency:        rec.Currency,
		RoundingMode:    rec.RoundingMode,
		CreatedAt:       rec.CreatedAt,
	})
}
