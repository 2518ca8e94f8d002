package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/KristianPetrov/1uplabs/internal/dto"
	"github.com/KristianPetrov/1uplabs/internal/middleware"
	"github.com/KristianPetrov/1uplabs/internal/model"
	"github.com/KristianPetrov/1uplabs/internal/service"
)

type StorefrontHandler struct {
	pricingService  service.PricingService
	checkoutService service.CheckoutService
	paymentService  service.PaymentService
	mailService     service.MailService
	orderService    service.OrderService
}

func NewStorefrontHandler(
	pricingService service.PricingService,
	checkoutService service.CheckoutService,
	paymentService service.PaymentService,
	mailService service.MailService,
	orderService service.OrderService,
) *StorefrontHandler {
	return &StorefrontHandler{
		pricingService:  pricingService,
		checkoutService: checkoutService,
		paymentService:  paymentService,
		mailService:     mailService,
		orderService:    orderService,
	}
}

func (h *StorefrontHandler) GetPricing(c echo.Context) error {
	ctx := c.Request().Context()

	var slugs []string
	if raw := c.QueryParam("slugs"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				slugs = append(slugs, trimmed)
			}
		}
	}

	rows := h.pricingService.Rows(ctx, slugs)

	return c.JSON(http.StatusOK, map[string]interface{}{"rows": rows})
}

func (h *StorefrontHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	lines := make([]service.CartLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, service.CartLine{Slug: line.Slug, Qty: line.Qty})
	}

	orderID, err := h.checkoutService.Commit(ctx, service.CreateOrderInput{
		CustomerID:       middleware.UserID(c),
		Lines:            lines,
		Email:            req.Email,
		Phone:            req.Phone,
		ShippingName:     req.ShippingName,
		ShippingAddress1: req.ShippingAddress1,
		ShippingAddress2: req.ShippingAddress2,
		ShippingCity:     req.ShippingCity,
		ShippingState:    req.ShippingState,
		ShippingZip:      req.ShippingZip,
		ShippingCountry:  req.ShippingCountry,
		PaymentMethod:    model.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, dto.CheckoutResponse{OrderID: orderID})
}

func (h *StorefrontHandler) GetPaymentMethods(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("id")

	order, err := h.orderService.Get(ctx, orderID)
	if err != nil {
		return mapServiceError(err)
	}

	methods := h.paymentService.Methods(ctx, order.ID, order.TotalCents)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"methods": methods,
		"memo":    h.paymentService.Memo(order.ID),
	})
}

func (h *StorefrontHandler) SendPaymentInstructions(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("id")

	if _, err := h.orderService.Get(ctx, orderID); err != nil {
		return mapServiceError(err)
	}

	result := h.mailService.Send(ctx, service.CategoryPaymentInstructions, orderID)

	return c.JSON(http.StatusOK, dto.SendEmailResponse{Result: string(result)})
}

func mapServiceError(err error) error {
	var (
		invalidInput *service.InvalidInputError
		unknown      *service.UnknownProductError
		outOfStock   *service.OutOfStockError
		validation   *service.ValidationError
	)

	switch {
	case errors.As(err, &invalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, invalidInput.Error())
	case errors.As(err, &unknown):
		return echo.NewHTTPError(http.StatusBadRequest, unknown.Error())
	case errors.As(err, &outOfStock):
		return echo.NewHTTPError(http.StatusConflict, outOfStock.Error())
	case errors.As(err, &validation):
		return echo.NewHTTPError(http.StatusBadRequest, validation.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	return err
}
