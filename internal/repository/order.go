package repository

import (
	"context"

	"web-store/internal/domain"
)

// OrderRepository defines persistence operations for Order entities. Create
// must persist the order and all of its items in one atomic unit.
type OrderRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, order *domain.Order) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}
