package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/KristianPetrov/1uplabs/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]*model.OrderItem, error)
	// ApplyStatus writes the full status row: the new status plus the
	// shipment fields, which are nil for every status except shipped, plus
	// the confirmed payment method when one is supplied. It also resets the
	// status-update audit timestamp, so each transition is announced
	// independently of the previous one.
	ApplyStatus(ctx context.Context, tx *gorm.DB, orderID string, status model.OrderStatus, paymentMethod *model.PaymentMethod, mailService, trackingNumber *string, shippedAt *time.Time) error
	MarkEmailSentAt(ctx context.Context, orderID, column string, sentAt time.Time) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) GetOrderItems(ctx context.Context, orderID string) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *orderRepoImpl) ApplyStatus(ctx context.Context, tx *gorm.DB, orderID string, status model.OrderStatus, paymentMethod *model.PaymentMethod, mailService, trackingNumber *string, shippedAt *time.Time) error {
	updates := map[string]interface{}{
		"status":               status,
		"mail_service":         mailService,
		"tracking_number":      trackingNumber,
		"shipped_at":           shippedAt,
		"status_email_sent_at": nil,
		"updated_at":           time.Now(),
	}
	if paymentMethod != nil {
		updates["payment_method"] = *paymentMethod
	}

	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *orderRepoImpl) MarkEmailSentAt(ctx context.Context, orderID, column string, sentAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			column: sentAt,
		}).Error
}
