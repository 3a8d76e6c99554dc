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
	createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	short_description TEXT NOT NULL DEFAULT '',
	full_description TEXT NOT NULL DEFAULT '',
	price REAL NOT NULL,
	main_image TEXT NOT NULL DEFAULT '',
	product_category_id INTEGER NULL REFERENCES product_categories(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`
	createCategoriesTable = `
CREATE TABLE IF NOT EXISTS product_categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image TEXT NOT NULL DEFAULT ''
);
`
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createProductsTable); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (int64, error) {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO products (name, short_description, full_description, price, main_image, product_category_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.Name,
		product.ShortDescription,
		product.FullDescription,
		product.Price,
		product.MainImage,
		product.CategoryID,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("product last insert id: %w", err)
	}
	product.ID = id
	return id, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, short_description, full_description, price, main_image, product_category_id, created_at, updated_at
FROM products
WHERE id = ?`,
		id,
	)

	var product domain.Product
	if err := row.Scan(
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &product, nil
}

func (r *ProductRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM products WHERE product_category_id = ?`,
		categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r *ProductRepository) ListPage(ctx context.Context, categoryID int64, offset, limit int, sort domain.ProductSort) ([]domain.Product, error) {
	order := "id"
	switch sort {
	case domain.SortPriceAscend:
		order = "price ASC, id"
	case domain.SortPriceDescend:
		order = "price DESC, id"
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT id, name, short_description, full_description, price, main_image, product_category_id, created_at, updated_at
FROM products
WHERE product_category_id = ?
ORDER BY %s
LIMIT ? OFFSET ?`, order),
		categoryID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query product page: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
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
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCategoriesTable); err != nil {
		return fmt.Errorf("create product categories table: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.ProductCategory) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO product_categories (name, description, image)
VALUES (?, ?, ?)`,
		category.Name,
		category.Description,
		category.Image,
	)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category last insert id: %w", err)
	}
	category.ID = id
	return id, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.ProductCategory, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, description, image
FROM product_categories
WHERE id = ?`,
		id,
	)

	var category domain.ProductCategory
	if err := row.Scan(&category.ID, &category.Name, &category.Description, &category.Image); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) ListAll(ctx context.Context) ([]domain.ProductCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, description, image
FROM product_categories
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.ProductCategory
	for rows.Next() {
		var category domain.ProductCategory
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.Image); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}
