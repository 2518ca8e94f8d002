package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/KristianPetrov/1uplabs/internal/catalog"
	"github.com/KristianPetrov/1uplabs/internal/model"
	"github.com/KristianPetrov/1uplabs/internal/repository"
)

const (
	minLineQty = 1
	maxLineQty = 99
)

type CartLine struct {
	Slug string
	Qty  int64
}

type CreateOrderInput struct {
	CustomerID *string // nil = guest checkout

	Lines []CartLine

	Email string
	Phone string

	ShippingName     string
	ShippingAddress1 string
	ShippingAddress2 string
	ShippingCity     string
	ShippingState    string
	ShippingZip      string
	ShippingCountry  string

	PaymentMethod model.PaymentMethod
}

// CheckoutService turns a validated cart into a durable order. The whole
// commit runs in one transaction: inventory reservations, the order row, its
// items, and the signed-in customer's profile refresh all land together or
// not at all.
type CheckoutService interface {
	Commit(ctx context.Context, input CreateOrderInput) (string, error)
}

type checkoutServiceImpl struct {
	db             *gorm.DB
	pricingService PricingService
	overrideRepo   repository.OverrideRepository
	orderRepo      repository.OrderRepository
	customerRepo   repository.CustomerRepository
	mailService    MailService
	logger         *zap.Logger
}

func NewCheckoutService(
	db *gorm.DB,
	pricingService PricingService,
	overrideRepo repository.OverrideRepository,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	mailService MailService,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		db:             db,
		pricingService: pricingService,
		overrideRepo:   overrideRepo,
		orderRepo:      orderRepo,
		customerRepo:   customerRepo,
		mailService:    mailService,
		logger:         logger,
	}
}

type computedLine struct {
	slug           string
	qty            int64
	productName    string
	productAmount  string
	unitPriceCents int64
	lineTotalCents int64
	inventory      *int64
}

func validateInput(input *CreateOrderInput) error {
	if len(input.Lines) == 0 {
		return invalidInput("lines", "cart is empty")
	}
	for _, line := range input.Lines {
		if line.Slug == "" {
			return invalidInput("lines", "missing product slug")
		}
		if line.Qty < minLineQty || line.Qty > maxLineQty {
			return invalidInput("lines",
				fmt.Sprintf("qty for %s must be between %d and %d", line.Slug, minLineQty, maxLineQty))
		}
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return invalidInput("email", "a valid email is required")
	}

	input.Phone = strings.TrimSpace(input.Phone)
	if input.Phone != "" && (len(input.Phone) < 5 || len(input.Phone) > 32) {
		return invalidInput("phone", "must be between 5 and 32 characters")
	}

	input.ShippingName = strings.TrimSpace(input.ShippingName)
	if len(input.ShippingName) < 2 || len(input.ShippingName) > 128 {
		return invalidInput("shippingName", "must be between 2 and 128 characters")
	}

	input.ShippingAddress1 = strings.TrimSpace(input.ShippingAddress1)
	if len(input.ShippingAddress1) < 3 || len(input.ShippingAddress1) > 128 {
		return invalidInput("shippingAddress1", "must be between 3 and 128 characters")
	}

	input.ShippingAddress2 = strings.TrimSpace(input.ShippingAddress2)
	if len(input.ShippingAddress2) > 128 {
		return invalidInput("shippingAddress2", "must be at most 128 characters")
	}

	input.ShippingCity = strings.TrimSpace(input.ShippingCity)
	if len(input.ShippingCity) < 2 || len(input.ShippingCity) > 64 {
		return invalidInput("shippingCity", "must be between 2 and 64 characters")
	}

	input.ShippingState = strings.TrimSpace(input.ShippingState)
	if len(input.ShippingState) < 2 || len(input.ShippingState) > 64 {
		return invalidInput("shippingState", "must be between 2 and 64 characters")
	}

	input.ShippingZip = strings.TrimSpace(input.ShippingZip)
	if len(input.ShippingZip) < 3 || len(input.ShippingZip) > 16 {
		return invalidInput("shippingZip", "must be between 3 and 16 characters")
	}

	input.ShippingCountry = strings.ToUpper(strings.TrimSpace(input.ShippingCountry))
	if input.ShippingCountry == "" {
		input.ShippingCountry = "US"
	}
	if len(input.ShippingCountry) != 2 {
		return invalidInput("shippingCountry", "must be a 2-letter country code")
	}

	if !input.PaymentMethod.Valid() {
		return invalidInput("paymentMethod", "must be one of cashapp, zelle, venmo, bitcoin")
	}

	return nil
}

func (s *checkoutServiceImpl) Commit(ctx context.Context, input CreateOrderInput) (string, error) {
	if err := validateInput(&input); err != nil {
		return "", err
	}

	slugs := make([]string, 0, len(input.Lines))
	for _, line := range input.Lines {
		slugs = append(slugs, line.Slug)
	}

	resolved, err := s.pricingService.Resolve(ctx, slugs)
	if err != nil {
		return "", err
	}

	// Lines are priced and reserved independently, in submission order. Two
	// lines for the same slug are not coalesced; if together they overrun
	// the inventory, the later decrement fails the whole order.
	computed := make([]computedLine, 0, len(input.Lines))
	var subtotalCents int64
	for _, line := range input.Lines {
		product, _ := catalog.BySlug(line.Slug)
		effective := resolved[line.Slug]

		if effective.PriceCents < 0 {
			return "", invalidInput("lines", fmt.Sprintf("invalid price for %s", line.Slug))
		}

		lineTotal := effective.PriceCents * line.Qty
		subtotalCents += lineTotal

		computed = append(computed, computedLine{
			slug:           line.Slug,
			qty:            line.Qty,
			productName:    product.Name,
			productAmount:  product.Amount,
			unitPriceCents: effective.PriceCents,
			lineTotalCents: lineTotal,
			inventory:      effective.Inventory,
		})
	}

	totalCents := subtotalCents // no tax or shipping surcharge

	order := &model.Order{
		CustomerID:       input.CustomerID,
		Email:            input.Email,
		Phone:            optional(input.Phone),
		ShippingName:     input.ShippingName,
		ShippingAddress1: input.ShippingAddress1,
		ShippingAddress2: optional(input.ShippingAddress2),
		ShippingCity:     input.ShippingCity,
		ShippingState:    input.ShippingState,
		ShippingZip:      input.ShippingZip,
		ShippingCountry:  input.ShippingCountry,
		PaymentMethod:    input.PaymentMethod,
		Status:           model.StatusPending,
		SubtotalCents:    subtotalCents,
		TotalCents:       totalCents,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Reserve inventory first. Only finite-inventory lines touch the
		// store; the decrement is a single conditional UPDATE, so two
		// checkouts racing for the last unit cannot both pass.
		for _, line := range computed {
			if line.inventory == nil {
				continue
			}

			ok, err := s.overrideRepo.DecrementInventory(ctx, tx, line.slug, line.qty)
			if err != nil {
				return fmt.Errorf("reserve inventory for %s: %w", line.slug, err)
			}
			if !ok {
				available := int64(0)
				if remaining, err := s.overrideRepo.GetInventory(ctx, tx, line.slug); err == nil && remaining != nil {
					available = *remaining
				}
				return &OutOfStockError{
					Slug:      line.slug,
					Name:      line.productName,
					Amount:    line.productAmount,
					Requested: line.qty,
					Available: available,
				}
			}
		}

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		items := make([]*model.OrderItem, 0, len(computed))
		for _, line := range computed {
			items = append(items, &model.OrderItem{
				OrderID:        order.ID,
				ProductSlug:    line.slug,
				ProductName:    line.productName,
				ProductAmount:  line.productAmount,
				Qty:            line.qty,
				UnitPriceCents: line.unitPriceCents,
				LineTotalCents: line.lineTotalCents,
			})
		}
		if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}

		// Convenience writes for signed-in customers. Still inside the
		// transaction: a failure here must unwind the reservation too.
		if input.CustomerID != nil {
			if err := s.customerRepo.UpdateProfile(ctx, tx, *input.CustomerID,
				optional(input.ShippingName), optional(input.Phone)); err != nil {
				return fmt.Errorf("refresh customer profile: %w", err)
			}

			if err := s.customerRepo.UpsertDefaultAddress(ctx, tx, &model.CustomerAddress{
				UserID:   *input.CustomerID,
				Name:     optional(input.ShippingName),
				Phone:    optional(input.Phone),
				Address1: input.ShippingAddress1,
				Address2: optional(input.ShippingAddress2),
				City:     input.ShippingCity,
				State:    input.ShippingState,
				Zip:      input.ShippingZip,
				Country:  input.ShippingCountry,
			}); err != nil {
				return fmt.Errorf("save default address: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	// The order is the source of truth; the receipt is a courtesy.
	if result := s.mailService.Send(ctx, CategoryReceipt, order.ID); result == SendResultFailed {
		s.logger.Warn("receipt email failed", zap.String("order_id", order.ID))
	}

	return order.ID, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
