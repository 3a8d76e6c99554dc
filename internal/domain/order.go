package domain

import "time"

type OrderStatus string

const (
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// Valid reports whether the status is one of the known order states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusInProgress, OrderStatusCompleted, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// Order represents a customer order. Items are created atomically with the
// order and never change afterwards; only the status is mutable, and only by
// an administrator.
type Order struct {
	ID        int64
	UserID    int64
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	User      *User
	Items     []OrderItem
}

// OrderItem is a single product line inside an order.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Product   *Product
}
