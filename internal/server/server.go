package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/KristianPetrov/1uplabs/internal/handler"
	"github.com/KristianPetrov/1uplabs/internal/middleware"
	"github.com/KristianPetrov/1uplabs/internal/service"
)

type Server struct {
	echo              *echo.Echo
	storefrontHandler *handler.StorefrontHandler
	adminHandler      *handler.AdminHandler
}

func NewServer(
	jwtSecret string,
	pricingService service.PricingService,
	checkoutService service.CheckoutService,
	paymentService service.PaymentService,
	mailService service.MailService,
	orderService service.OrderService,
	orderStatusService service.OrderStatusService,
) *Server {
	e := echo.New()

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.Session(jwtSecret))

	s := &Server{
		echo:              e,
		storefrontHandler: handler.NewStorefrontHandler(pricingService, checkoutService, paymentService, mailService, orderService),
		adminHandler:      handler.NewAdminHandler(pricingService, orderStatusService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.GET("/pricing", s.storefrontHandler.GetPricing)
	api.POST("/checkout", s.storefrontHandler.Checkout)

	orders := api.Group("/orders")
	orders.GET("/:id/payment-methods", s.storefrontHandler.GetPaymentMethods)
	orders.POST("/:id/payment-instructions", s.storefrontHandler.SendPaymentInstructions)

	// -------- admin --------
	admin := api.Group("/admin", middleware.RequireAdmin())
	admin.POST("/orders/:id/status", s.adminHandler.UpdateOrderStatus)
	admin.PUT("/overrides/:slug", s.adminHandler.UpsertOverride)
	admin.DELETE("/overrides/:slug", s.adminHandler.DeleteOverride)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
