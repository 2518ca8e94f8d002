package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/KristianPetrov/1uplabs/internal/dto"
	"github.com/KristianPetrov/1uplabs/internal/model"
	"github.com/KristianPetrov/1uplabs/internal/service"
)

type AdminHandler struct {
	pricingService     service.PricingService
	orderStatusService service.OrderStatusService
}

func NewAdminHandler(pricingService service.PricingService, orderStatusService service.OrderStatusService) *AdminHandler {
	return &AdminHandler{
		pricingService:     pricingService,
		orderStatusService: orderStatusService,
	}
}

func (h *AdminHandler) UpsertOverride(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")

	var req dto.OverrideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.pricingService.SetOverride(ctx, slug, req.PriceCents, req.Inventory); err != nil {
		return mapServiceError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) DeleteOverride(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")

	if err := h.pricingService.DeleteOverride(ctx, slug); err != nil {
		return mapServiceError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("id")

	var req dto.StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.orderStatusService.UpdateStatus(ctx, orderID, service.StatusUpdateRequest{
		Status:         model.OrderStatus(req.Status),
		PaymentMethod:  model.PaymentMethod(req.PaymentMethod),
		MailService:    req.MailService,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, dto.StatusUpdateResponse{
		Status:  string(result.Status),
		Warning: result.Warning,
	})
}
