package service

import (
	"context"
	"sync"
	"time"

	"web-store/internal/domain"
	"web-store/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository enforcing the same uniqueness
// constraints the sqlite schema does.
type fakeUserRepo struct {
	mu        sync.Mutex
	seq       int64
	users     map[int64]*domain.User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) Init(context.Context) error { return nil }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return 0, r.createErr
	}
	for _, existing := range r.users {
		if existing.Login == user.Login {
			return 0, repository.ErrDuplicateLogin
		}
		if existing.Email == user.Email {
			return 0, repository.ErrDuplicateEmail
		}
	}
	r.seq++
	user.ID = r.seq
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return user.ID, nil
}

func (r *fakeUserRepo) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Login == login {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	seq    int64
	orders map[int64]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*domain.Order)}
}

func (r *fakeOrderRepo) Init(context.Context) error { return nil }

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	order.ID = r.seq
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
		order.Items[i].OrderID = order.ID
	}
	clone := *order
	clone.Items = append([]domain.OrderItem(nil), order.Items...)
	r.orders[order.ID] = &clone
	return order.ID, nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) ListAll(context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []domain.Order
	for _, order := range r.orders {
		orders = append(orders, *order)
	}
	return orders, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	seq      int64
	products map[int64]*domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*domain.Product)}
}

func (r *fakeProductRepo) Init(context.Context) error { return nil }

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	product.ID = r.seq
	clone := *product
	r.products[product.ID] = &clone
	return product.ID, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *fakeProductRepo) CountByCategory(_ context.Context, categoryID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, product := range r.products {
		if product.CategoryID != nil && *product.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r *fakeProductRepo) ListPage(_ context.Context, categoryID int64, offset, limit int, _ domain.ProductSort) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Product
	for id := int64(1); id <= r.seq; id++ {
		product, ok := r.products[id]
		if !ok || product.CategoryID == nil || *product.CategoryID != categoryID {
			continue
		}
		matched = append(matched, *product)
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	seq        int64
	categories map[int64]*domain.ProductCategory
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[int64]*domain.ProductCategory)}
}

func (r *fakeCategoryRepo) Init(context.Context) error { return nil }

func (r *fakeCategoryRepo) Create(_ context.Context, category *domain.ProductCategory) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	category.ID = r.seq
	clone := *category
	r.categories[category.ID] = &clone
	return category.ID, nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.ProductCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *category
	return &clone, nil
}

func (r *fakeCategoryRepo) ListAll(context.Context) ([]domain.ProductCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var categories []domain.ProductCategory
	for id := int64(1); id <= r.seq; id++ {
		if category, ok := r.categories[id]; ok {
			categories = append(categories, *category)
		}
	}
	return categories, nil
}
