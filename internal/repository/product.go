package repository

import (
	"context"

	"web-store/internal/domain"
)

// ProductRepository defines persistence operations for the product catalog.
type ProductRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, product *domain.Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
	ListPage(ctx context.Context, categoryID int64, offset, limit int, sort domain.ProductSort) ([]domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository defines persistence operations for product categories.
type CategoryRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, category *domain.ProductCategory) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ProductCategory, error)
	ListAll(ctx context.Context) ([]domain.ProductCategory, error)
}
