package domain

import "time"

// Product is a catalog item offered by the store.
type Product struct {
	ID               int64
	Name             string
	ShortDescription string
	FullDescription  string
	Price            float64
	MainImage        string
	CategoryID       *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProductCategory groups products for catalog browsing.
type ProductCategory struct {
	ID          int64
	Name        string
	Description string
	Image       string
}

// ProductSort selects the ordering of a catalog page.
type ProductSort string

const (
	SortPriceAscend  ProductSort = "price_asc"
	SortPriceDescend ProductSort = "price_desc"
	SortDefault      ProductSort = ""
)

// ProductPage is one page of the catalog for a category.
type ProductPage struct {
	Category       ProductCategory
	Products       []Product
	PageNumber     int
	TotalPageCount int
	Sort           ProductSort
}
