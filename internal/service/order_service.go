package service

import (
	"context"
	"errors"
	"fmt"

	"web-store/internal/auth"
	"web-store/internal/domain"
	"web-store/internal/repository"
)

var (
	// ErrEmptyOrder is returned when an order is created with no items.
	ErrEmptyOrder = errors.New("order has no items")
	// ErrOrderNotFound indicates the order id does not resolve.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatus indicates an unknown order status value.
	ErrInvalidStatus = errors.New("unknown order status")
)

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID int64
	Quantity  int
}

// OrderService implements the order workflow: creation gated by ownership,
// status changes gated by the admin role.
type OrderService interface {
	CreateOrder(ctx context.Context, principal domain.Principal, ownerID int64, items []OrderItemInput) (*domain.Order, error)
	ChangeStatus(ctx context.Context, principal domain.Principal, orderID int64, status domain.OrderStatus) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListAll(ctx context.Context, principal domain.Principal) ([]domain.Order, error)
}

type orderService struct {
	orders repository.OrderRepository
}

func NewOrderService(orders repository.OrderRepository) OrderService {
	return &orderService{orders: orders}
}

// CreateOrder persists a new order owned by the authenticated principal. The
// declared owner id is advisory only and must match the principal; the order
// and its items are written in one atomic unit with status InProgress.
func (s *orderService) CreateOrder(ctx context.Context, principal domain.Principal, ownerID int64, items []OrderItemInput) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range items {
		if item.ProductID <= 0 {
			return nil, fmt.Errorf("%w: product id is required", ErrValidation)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
	}
	if err := auth.RequireOwner(principal, ownerID); err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID: principal.UserID,
		Status: domain.OrderStatusInProgress,
		Items:  make([]domain.OrderItem, len(items)),
	}
	for i, item := range items {
		order.Items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	if _, err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// ChangeStatus overwrites the order status. Only administrators may call it;
// any status is reachable from any other.
func (s *orderService) ChangeStatus(ctx context.Context, principal domain.Principal, orderID int64, status domain.OrderStatus) error {
	if err := auth.RequireRole(principal, domain.RoleAdmin); err != nil {
		return err
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("change order status: %w", err)
	}
	return nil
}

func (s *orderService) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	return orders, nil
}

// ListAll returns every order with user and product data for the admin
// overview.
func (s *orderService) ListAll(ctx context.Context, principal domain.Principal) ([]domain.Order, error) {
	if err := auth.RequireRole(principal, domain.RoleAdmin); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return orders, nil
}
