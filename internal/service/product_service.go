package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"web-store/internal/auth"
	"web-store/internal/domain"
	"web-store/internal/repository"
)

var (
	// ErrProductNotFound indicates the product id does not resolve.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound indicates the category id does not resolve.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInvalidPage indicates a page number outside the category's range.
	ErrInvalidPage = errors.New("invalid page number")
)

// catalogPageSize is the number of products on one catalog page.
const catalogPageSize = 8

// ProductService serves the public catalog and admin product management.
type ProductService interface {
	Categories(ctx context.Context) ([]domain.ProductCategory, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetPage(ctx context.Context, categoryID int64, pageNumber int, sort domain.ProductSort) (*domain.ProductPage, error)
	CreateProduct(ctx context.Context, principal domain.Principal, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, principal domain.Principal, id int64) (*domain.Product, error)
}

type productService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository) ProductService {
	return &productService{products: products, categories: categories}
}

func (s *productService) Categories(ctx context.Context) ([]domain.ProductCategory, error) {
	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// GetPage returns one page of a category's products together with the page
// count and the category itself.
func (s *productService) GetPage(ctx context.Context, categoryID int64, pageNumber int, sort domain.ProductSort) (*domain.ProductPage, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	total, err := s.products.CountByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("count category products: %w", err)
	}
	totalPages := (total + catalogPageSize - 1) / catalogPageSize

	if pageNumber < 1 || pageNumber > totalPages {
		return nil, ErrInvalidPage
	}

	products, err := s.products.ListPage(ctx, categoryID, (pageNumber-1)*catalogPageSize, catalogPageSize, sort)
	if err != nil {
		return nil, fmt.Errorf("list product page: %w", err)
	}

	return &domain.ProductPage{
		Category:       *category,
		Products:       products,
		PageNumber:     pageNumber,
		TotalPageCount: totalPages,
		Sort:           sort,
	}, nil
}

// CreateProduct persists a new catalog item; administrators only.
func (s *productService) CreateProduct(ctx context.Context, principal domain.Principal, product *domain.Product) (*domain.Product, error) {
	if err := auth.RequireRole(principal, domain.RoleAdmin); err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if product.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if product.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *product.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("get category: %w", err)
		}
	}

	if _, err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a catalog item; administrators only. The removed
// product is returned so callers can clean up attached resources.
func (s *productService) DeleteProduct(ctx context.Context, principal domain.Principal, id int64) (*domain.Product, error) {
	if err := auth.RequireRole(principal, domain.RoleAdmin); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	return product, nil
}
