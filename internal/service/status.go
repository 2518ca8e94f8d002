package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/KristianPetrov/1uplabs/internal/model"
	"github.com/KristianPetrov/1uplabs/internal/repository"
)

type StatusUpdateRequest struct {
	Status         model.OrderStatus
	PaymentMethod  model.PaymentMethod // confirmed channel, required when entering paid
	MailService    string
	TrackingNumber string
}

type StatusUpdateResult struct {
	Status model.OrderStatus
	// Warning carries a non-blocking notification problem. The status change
	// itself is already durable when it is set.
	Warning string
}

// OrderStatusService applies operator-driven transitions on an existing
// order. All preconditions are checked before anything is persisted.
type OrderStatusService interface {
	UpdateStatus(ctx context.Context, orderID string, req StatusUpdateRequest) (StatusUpdateResult, error)
}

type orderStatusServiceImpl struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	mailService MailService
	logger      *zap.Logger
}

func NewOrderStatusService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	mailService MailService,
	logger *zap.Logger,
) OrderStatusService {
	return &orderStatusServiceImpl{
		db:          db,
		orderRepo:   orderRepo,
		mailService: mailService,
		logger:      logger,
	}
}

// allowedTransitions is the single source of truth for which operator moves
// are legal. Canceled is terminal; shipped may be exited for operator
// corrections, which clears the shipment fields.
var allowedTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.StatusPending:  {model.StatusPaid, model.StatusShipped, model.StatusCanceled},
	model.StatusPaid:     {model.StatusPending, model.StatusShipped, model.StatusCanceled},
	model.StatusShipped:  {model.StatusPending, model.StatusPaid, model.StatusCanceled},
	model.StatusCanceled: {},
}

func transitionAllowed(from, to model.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func (s *orderStatusServiceImpl) UpdateStatus(ctx context.Context, orderID string, req StatusUpdateRequest) (StatusUpdateResult, error) {
	if !req.Status.Valid() {
		return StatusUpdateResult{}, validationError(fmt.Sprintf("unknown status %q", string(req.Status)))
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatusUpdateResult{}, ErrOrderNotFound
		}
		return StatusUpdateResult{}, fmt.Errorf("load order: %w", err)
	}

	// Re-saving the current status is a no-op: nothing is written and no
	// notification goes out.
	if order.Status == req.Status {
		return StatusUpdateResult{Status: order.Status}, nil
	}

	if !transitionAllowed(order.Status, req.Status) {
		return StatusUpdateResult{}, validationError(fmt.Sprintf(
			"order cannot move from %s to %s", order.Status.Display(), req.Status.Display()))
	}

	var paymentMethod *model.PaymentMethod
	var mailService, trackingNumber *string
	var shippedAt *time.Time

	switch req.Status {
	case model.StatusPaid:
		if !req.PaymentMethod.Valid() {
			return StatusUpdateResult{}, validationError(
				"a payment method must be confirmed to mark an order as paid")
		}
		confirmed := req.PaymentMethod
		paymentMethod = &confirmed
	case model.StatusShipped:
		carrier := strings.TrimSpace(req.MailService)
		tracking := strings.TrimSpace(req.TrackingNumber)
		if carrier == "" || tracking == "" {
			return StatusUpdateResult{}, validationError(
				"mail service and tracking number are required to mark an order as shipped")
		}
		now := time.Now()
		mailService, trackingNumber, shippedAt = &carrier, &tracking, &now
	}

	// Shipment fields stay nil for every non-shipped target, which clears
	// them when an order leaves shipped.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.ApplyStatus(ctx, tx, orderID, req.Status, paymentMethod, mailService, trackingNumber, shippedAt)
	})
	if err != nil {
		return StatusUpdateResult{}, fmt.Errorf("apply status: %w", err)
	}

	result := StatusUpdateResult{Status: req.Status}

	// The status row is durable at this point; a notification problem is a
	// soft warning for the operator, never a rollback.
	switch s.mailService.Send(ctx, CategoryStatusUpdate, orderID) {
	case SendResultFailed:
		s.logger.Warn("status update email failed", zap.String("order_id", orderID),
			zap.String("status", string(req.Status)))
		result.Warning = "status saved, but the notification email failed to send"
	case SendResultNoProvider:
		result.Warning = "status saved; email provider not configured, customer was not notified"
	}

	return result, nil
}
