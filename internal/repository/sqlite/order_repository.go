package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"web-store/internal/domain"
	"web-store/internal/repository"
)

const (
	createOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`
	createOrderItemsTable = `
CREATE TABLE IF NOT EXISTS order_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id INTEGER NOT NULL REFERENCES products(id),
	quantity INTEGER NOT NULL
);
`
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createOrdersTable); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createOrderItemsTable); err != nil {
		return fmt.Errorf("create order items table: %w", err)
	}
	return nil
}

// Create persists the order and all of its items inside one transaction; a
// failure partway through leaves no partial order visible.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (int64, error) {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO orders (user_id, status, created_at, updated_at)
VALUES (?, ?, ?, ?)`,
		order.UserID,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order last insert id: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		itemRes, err := tx.ExecContext(ctx, `
INSERT INTO order_items (order_id, product_id, quantity)
VALUES (?, ?, ?)`,
			orderID,
			item.ProductID,
			item.Quantity,
		)
		if err != nil {
			return 0, fmt.Errorf("insert order item: %w", err)
		}
		itemID, err := itemRes.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("order item last insert id: %w", err)
		}
		item.ID = itemID
		item.OrderID = orderID
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit order tx: %w", err)
	}

	order.ID = orderID
	return orderID, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, status, created_at, updated_at
FROM orders
WHERE id = ?`,
		id,
	)

	var order domain.Order
	if err := row.Scan(&order.ID, &order.UserID, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	items, err := r.loadItems(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return &order, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, status, created_at, updated_at
FROM orders
WHERE user_id = ?
ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query orders by user: %w", err)
	}
	defer rows.Close()

	return r.collectOrders(ctx, rows, false)
}

// ListAll returns every order newest-first with items, products, and the
// owning user eagerly loaded for the admin overview.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, status, created_at, updated_at
FROM orders
ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query all orders: %w", err)
	}
	defer rows.Close()

	return r.collectOrders(ctx, rows, true)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET status = ?, updated_at = ?
WHERE id = ?`,
		status,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("order status rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) collectOrders(ctx context.Context, rows *sql.Rows, withUsers bool) ([]domain.Order, error) {
	var orders []domain.Order
	var ids []int64
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	if withUsers {
		if err := r.loadUsers(ctx, orders); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// loadItems fetches the items of the given orders together with their
// products in one query.
func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	placeholders := make([]byte, 0, len(orderIDs)*2)
	args := make([]any, 0, len(orderIDs))
	for i, id := range orderIDs {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT oi.id, oi.order_id, oi.product_id, oi.quantity,
	p.id, p.name, p.short_description, p.full_description, p.price, p.main_image, p.product_category_id, p.created_at, p.updated_at
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE oi.order_id IN (%s)
ORDER BY oi.id`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var item domain.OrderItem
		var product domain.Product
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&product.ID,
			&product.Name,
			&product.ShortDescription,
			&product.FullDescription,
			&product.Price,
			&product.MainImage,
			&product.CategoryID,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.Product = &product
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

func (r *OrderRepository) loadUsers(ctx context.Context, orders []domain.Order) error {
	users := make(map[int64]*domain.User)
	for i := range orders {
		userID := orders[i].UserID
		user, ok := users[userID]
		if !ok {
			row := r.db.QueryRowContext(ctx, `
SELECT id, login, email, password_hash, is_admin, created_at, updated_at
FROM users
WHERE id = ?`,
				userID,
			)
			var err error
			user, err = scanUser(row)
			if err != nil {
				return fmt.Errorf("load order user %d: %w", userID, err)
			}
			users[userID] = user
		}
		orders[i].User = user
	}
	return nil
}
