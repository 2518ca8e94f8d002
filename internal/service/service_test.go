package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KristianPetrov/1uplabs/internal/config"
	"github.com/KristianPetrov/1uplabs/internal/model"
	"github.com/KristianPetrov/1uplabs/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") +
		"?_busy_timeout=5000&_txlock=immediate"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(4)

	require.NoError(t, db.AutoMigrate(
		&model.PriceOverride{},
		&model.User{},
		&model.CustomerAddress{},
		&model.Order{},
		&model.OrderItem{},
	))

	return db
}

type sentEmail struct {
	to      string
	subject string
	html    string
	text    string
}

type fakeEmailClient struct {
	mu      sync.Mutex
	enabled bool
	fail    bool
	sends   []sentEmail
}

func (f *fakeEmailClient) Enabled() bool {
	return f.enabled
}

func (f *fakeEmailClient) Send(ctx context.Context, to, subject, html, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return context.DeadlineExceeded
	}
	f.sends = append(f.sends, sentEmail{to: to, subject: subject, html: html, text: text})
	return nil
}

func (f *fakeEmailClient) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

func (f *fakeEmailClient) lastSend() sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends[len(f.sends)-1]
}

type fakeRateClient struct {
	rate decimal.Decimal
	err  error
}

func (f *fakeRateClient) SpotPriceUSD(ctx context.Context) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.rate, nil
}

type testEnv struct {
	db           *gorm.DB
	email        *fakeEmailClient
	rate         *fakeRateClient
	overrideRepo repository.OverrideRepository
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	pricing      PricingService
	payment      PaymentService
	mail         MailService
	checkout     CheckoutService
	status       OrderStatusService
	orders       OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	log := zap.NewNop()

	email := &fakeEmailClient{enabled: true}
	rate := &fakeRateClient{rate: decimal.RequireFromString("50000.00")}

	paymentsCfg := &config.Payments{
		CashAppTag:     "$1uplabs",
		VenmoHandle:    "@Shop_1-upLabs",
		ZelleRecipient: "pay@1uplabs.test",
		BTCAddress:     "bc1qexampleaddress",
	}

	overrideRepo := repository.NewOverrideRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	pricing := NewPricingService(overrideRepo, log)
	payment := NewPaymentService(rate, paymentsCfg, log)
	mail := NewMailService(email, orderRepo, payment, "http://localhost:8080", log)
	checkout := NewCheckoutService(db, pricing, overrideRepo, orderRepo, customerRepo, mail, log)
	status := NewOrderStatusService(db, orderRepo, mail, log)

	return &testEnv{
		db:           db,
		email:        email,
		rate:         rate,
		overrideRepo: overrideRepo,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		pricing:      pricing,
		payment:      payment,
		mail:         mail,
		checkout:     checkout,
		status:       status,
		orders:       NewOrderService(orderRepo),
	}
}

func i64(v int64) *int64 {
	return &v
}

func validCheckoutInput(lines ...CartLine) CreateOrderInput {
	return CreateOrderInput{
		Lines:            lines,
		Email:            "Customer@Example.com",
		Phone:            "555-0100",
		ShippingName:     "Jordan Reyes",
		ShippingAddress1: "123 Elm Street",
		ShippingCity:     "Austin",
		ShippingState:    "TX",
		ShippingZip:      "78701",
		ShippingCountry:  "us",
		PaymentMethod:    model.PaymentCashApp,
	}
}
