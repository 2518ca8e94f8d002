package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/KristianPetrov/1uplabs/internal/client"
	"github.com/KristianPetrov/1uplabs/internal/config"
	"github.com/KristianPetrov/1uplabs/internal/repository"
	"github.com/KristianPetrov/1uplabs/internal/server"
	"github.com/KristianPetrov/1uplabs/internal/service"
)

func newLogger(logCfg *config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logCfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if logCfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := client.InitSqliteClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	rateClient := client.NewCoinbaseClient(&cfg.BTC)
	emailClient := client.NewResendClient(&cfg.Resend)

	overrideRepo := repository.NewOverrideRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	pricingService := service.NewPricingService(overrideRepo, logger)
	paymentService := service.NewPaymentService(rateClient, &cfg.Payments, logger)
	mailService := service.NewMailService(emailClient, orderRepo, paymentService, cfg.SiteURL, logger)
	checkoutService := service.NewCheckoutService(db, pricingService, overrideRepo, orderRepo, customerRepo, mailService, logger)
	orderService := service.NewOrderService(orderRepo)
	orderStatusService := service.NewOrderStatusService(db, orderRepo, mailService, logger)

	srv := server.NewServer(cfg.JWTSecret,
		pricingService, checkoutService, paymentService, mailService, orderService, orderStatusService)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Info("starting HTTP server", zap.String("addr", serverAddr))

	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
