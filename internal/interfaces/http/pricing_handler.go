package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/verone/commerce-core/internal/application/dto"
	"github.com/verone/commerce-core/internal/application/pricing"
)

// PricingHandler maneja la vista previa de precios y comisiones (protegido).
type PricingHandler struct {
	uc *pricing.QuoteUseCase
}

// NewPricingHandler construye el handler.
func NewPricingHandler(uc *pricing.QuoteUseCase) *PricingHandler {
	return &PricingHandler{uc: uc}
}

// Quote godoc
// @Summary      Vista previa de precio de venta y reparto de comisiones
// @Description  Sin efectos: aplica exactamente el mismo redondeo que la
//	liquidación persistida.
// @Tags         pricing
// @Security     Bearer
// @Produce      json
// @Param        base_price       query  string  true   "Precio base HT (decimal)"
// @Param        margin_rate      query  string  true   "Tasa de margen %% (0 <= m < 100)"
// @Param        commission_rate  query  string  false  "Tasa de comisión %% (default del despliegue)"
// @Success      200  {object}  dto.PriceQuoteResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/pricing/quote [get]
func (h *PricingHandler) Quote(c *fiber.Ctx) error {
	if GetCompanyID(c) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}

	base, err := decimal.NewFromString(c.Query("base_price"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "base_price inválido"})
	}
	margin, err := decimal.NewFromString(c.Query("margin_rate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "margin_rate inválido"})
	}
	var commission *decimal.Decimal
	if q := c.Query("commission_rate"); q != "" {
		v, err := decimal.NewFromString(q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "commission_rate inválido"})
		}
		commission = &v
	}

	quote, err := h.uc.Quote(c.Context(), base, margin, commission)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(quote)
}
