package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/KristianPetrov/1uplabs/internal/model"
	"github.com/KristianPetrov/1uplabs/internal/repository"
)

type OrderService interface {
	Get(ctx context.Context, orderID string) (*model.Order, error)
	GetItems(ctx context.Context, orderID string) ([]*model.OrderItem, error)
}

type orderServiceImpl struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderServiceImpl{
		orderRepo: orderRepo,
	}
}

func (s *orderServiceImpl) Get(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	return order, nil
}

func (s *orderServiceImpl) GetItems(ctx context.Context, orderID string) ([]*model.OrderItem, error) {
	return s.orderRepo.GetOrderItems(ctx, orderID)
}
