package http

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"web-store/internal/auth"
	"web-store/internal/domain"
	"web-store/internal/service"
	"web-store/internal/storage"
)

func (h *Handler) categories(c *gin.Context) {
	categories, err := h.products.Categories(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}

	resp := make([]CategoryResponse, len(categories))
	for i := range categories {
		resp[i] = categoryToResponse(categories[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Query("productId"), 10, 64)
	if err != nil || productID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, productToResponse(product))
}

type productPageResponse struct {
	Category          CategoryResponse   `json:"category"`
	ProductsOnPage    []ProductResponse  `json:"productsOnPage"`
	CurrentPageNumber int                `json:"currentPageNumber"`
	TotalPageCount    int                `json:"totalPageCount"`
	SortBy            domain.ProductSort `json:"sortBy"`
}

func (h *Handler) productPage(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Query("productCategoryId"), 10, 64)
	if err != nil || categoryID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}
	pageNumber, err := strconv.Atoi(c.DefaultQuery("pageNumber", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
		return
	}

	sort := domain.ProductSort(c.Query("sortBy"))
	switch sort {
	case domain.SortDefault, domain.SortPriceAscend, domain.SortPriceDescend:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort option"})
		return
	}

	page, err := h.products.GetPage(c.Request.Context(), categoryID, pageNumber, sort)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		default:
			h.internalError(c, err)
		}
		return
	}

	resp := productPageResponse{
		Category:          categoryToResponse(page.Category),
		ProductsOnPage:    make([]ProductResponse, len(page.Products)),
		CurrentPageNumber: page.PageNumber,
		TotalPageCount:    page.TotalPageCount,
		SortBy:            page.Sort,
	}
	for i := range page.Products {
		resp.ProductsOnPage[i] = productToResponse(&page.Products[i])
	}
	c.JSON(http.StatusOK, resp)
}

type createProductRequest struct {
	Name             string  `json:"name" binding:"required"`
	ShortDescription string  `json:"shortDescription"`
	FullDescription  string  `json:"fullDescription"`
	Price            float64 `json:"price"`
	MainImage        string  `json:"mainImage"`
	CategoryID       *int64  `json:"productCategoryId"`
}

func (h *Handler) createProduct(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		h.unauthorized(c, errTokenCookieMissing)
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := &domain.Product{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		FullDescription:  req.FullDescription,
		Price:            req.Price,
		MainImage:        req.MainImage,
		CategoryID:       req.CategoryID,
	}

	created, err := h.products.CreateProduct(c.Request.Context(), principal, product)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		default:
			h.internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, productToResponse(created))
}

// deleteProduct removes a catalog item and, when the item carried a stored
// image, the image object backing it.
func (h *Handler) deleteProduct(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		h.unauthorized(c, errTokenCookieMissing)
		return
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.products.DeleteProduct(c.Request.Context(), principal, productID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		default:
			h.internalError(c, err)
		}
		return
	}

	h.removeStoredImage(c, product.MainImage)
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// removeStoredImage deletes the object behind an s3://bucket/key image
// reference. External image URLs are left alone, and a storage failure does
// not fail the request; the product row is already gone.
func (h *Handler) removeStoredImage(c *gin.Context, image string) {
	if h.storage == nil || h.bucket == "" || image == "" {
		return
	}
	key := strings.TrimPrefix(image, fmt.Sprintf("s3://%s/", h.bucket))
	if key == image {
		return
	}
	if err := h.storage.DeleteObject(c.Request.Context(), h.bucket, key); err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"key":        key,
		}).WithError(err).Warn("delete product image")
	}
}

// uploadImage stores a product image in object storage and returns a
// presigned URL the storefront can embed.
func (h *Handler) uploadImage(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage service not configured"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(path.Ext(header.Filename))
	key := fmt.Sprintf("%s/%s%s", strings.Trim(h.keyPrefix, "/"), uuid.NewString(), ext)

	location, err := h.storage.UploadImage(c.Request.Context(), storage.UploadInput{
		Bucket:      h.bucket,
		Key:         key,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.internalError(c, err)
		return
	}

	url, err := h.storage.GetObjectURL(c.Request.Context(), h.bucket, key, 24*time.Hour)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": location, "url": url, "key": key})
}

func (h *Handler) listImages(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage service not configured"})
		return
	}

	objects, err := h.storage.ListObjects(c.Request.Context(), h.bucket, strings.Trim(h.keyPrefix, "/"))
	if err != nil {
		h.internalError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
