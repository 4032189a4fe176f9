package services

import (
	"context"
	"errors"

	"food-order/models"
	"food-order/repositories"

	"github.com/google/uuid"
)

type OrderStore interface {
	Save(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID, page, limit int) ([]models.Order, int, error)
	GetByID(ctx context.Context, userID int, id uuid.UUID) (*models.Order, error)
}

const (
	defaultOrderPageSize = 10
	maxOrderPageSize     = 50
)

// OrderService is the history of completed orders.
type OrderService struct {
	orders OrderStore
}

func NewOrderService(orders OrderStore) *OrderService {
	return &OrderService{orders: orders}
}

func (s *OrderService) Save(ctx context.Context, order *models.Order) error {
	if err := s.orders.Save(ctx, order); err != nil {
		return models.PersistenceError(err, "failed to record order")
	}
	return nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID, page, limit int) ([]models.Order, models.PaginationMeta, error) {
	page, limit = normalizePage(page, limit)

	orders, total, err := s.orders.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, models.PaginationMeta{}, models.PersistenceError(err, "failed to load orders")
	}
	return orders, paginationMeta(page, limit, total), nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultOrderPageSize
	}
	if limit > maxOrderPageSize {
		limit = maxOrderPageSize
	}
	return page, limit
}

func paginationMeta(page, limit, total int) models.PaginationMeta {
	return models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: (total + limit - 1) / limit,
	}
}

func (s *OrderService) GetByID(ctx context.Context, userID int, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, userID, id)
	if errors.Is(err, repositories.ErrOrderNotFound) {
		return nil, models.NotFoundError("order not found")
	}
	if err != nil {
		return nil, models.PersistenceError(err, "failed to load order")
	}
	return order, nil
}
