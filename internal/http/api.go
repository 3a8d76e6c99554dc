package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"web-store/internal/auth"
	"web-store/internal/domain"
	"web-store/internal/metrics"
	"web-store/internal/service"
	"web-store/internal/storage"
)

// errTokenCookieMissing marks requests that carry no session cookie at all.
var errTokenCookieMissing = errors.New("session cookie missing")

// Handler wires HTTP routes to domain services.
type Handler struct {
	users        service.UserService
	orders       service.OrderService
	products     service.ProductService
	tokens       *auth.TokenIssuer
	storage      storage.Service
	bucket       string
	keyPrefix    string
	cookieSecure bool
	logger       *logrus.Logger
}

func NewHandler(
	users service.UserService,
	orders service.OrderService,
	products service.ProductService,
	tokens *auth.TokenIssuer,
	store storage.Service,
	bucket, keyPrefix string,
	cookieSecure bool,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:        users,
		orders:       orders,
		products:     products,
		tokens:       tokens,
		storage:      store,
		bucket:       bucket,
		keyPrefix:    keyPrefix,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(metrics.Middleware())

	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.register)
			authGroup.POST("/login", h.login)
			authGroup.POST("/logout", h.logout)
			authGroup.GET("/currentUser", h.requireAuth(), h.currentUser)
		}

		orderGroup := api.Group("/order")
		{
			orderGroup.POST("/create", h.requireAuth(), h.createOrder)
			orderGroup.GET("/user/:userId", h.ordersByUser)
			orderGroup.GET("/getAll", h.requireAuth(), h.requireAdmin(), h.allOrders)
			orderGroup.POST("/updateStatus", h.requireAuth(), h.requireAdmin(), h.updateOrderStatus)
		}

		productGroup := api.Group("/product")
		{
			productGroup.GET("/categories", h.categories)
			productGroup.GET("/get", h.getProduct)
			productGroup.GET("/getPage", h.productPage)
			productGroup.POST("/create", h.requireAuth(), h.requireAdmin(), h.createProduct)
			productGroup.POST("/delete/:productId", h.requireAuth(), h.requireAdmin(), h.deleteProduct)
			productGroup.POST("/image", h.requireAuth(), h.requireAdmin(), h.uploadImage)
			productGroup.GET("/images", h.requireAuth(), h.requireAdmin(), h.listImages)
		}

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
}

// unauthorized aborts with a uniform 401. The underlying reason is logged
// server-side only, so token failures are not distinguishable by the client.
func (h *Handler) unauthorized(c *gin.Context, reason error) {
	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"path":       c.FullPath(),
		"reason":     reason,
	}).Warn("authentication failed")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// internalError hides the failure detail from the client but keeps it in the
// server log.
func (h *Handler) internalError(c *gin.Context, err error) {
	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"path":       c.FullPath(),
	}).WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

type UserResponse struct {
	ID      int64  `json:"id"`
	Login   string `json:"login"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:      user.ID,
		Login:   user.Login,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}
}

type OrderItemResponse struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *ProductResponse `json:"product,omitempty"`
}

type OrderUserResponse struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

type OrderResponse struct {
	ID        int64               `json:"id"`
	UserID    int64               `json:"userId"`
	Status    domain.OrderStatus  `json:"status"`
	CreatedAt string              `json:"createdAt"`
	User      *OrderUserResponse  `json:"user,omitempty"`
	Items     []OrderItemResponse `json:"items"`
}

func orderToResponse(order domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:        order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		CreatedAt: order.CreatedAt.Format(time.RFC3339),
		Items:     make([]OrderItemResponse, len(order.Items)),
	}
	if order.User != nil {
		resp.User = &OrderUserResponse{ID: order.User.ID, Login: order.User.Login}
	}
	for i := range order.Items {
		item := order.Items[i]
		resp.Items[i] = OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			product := productToResponse(item.Product)
			resp.Items[i].Product = &product
		}
	}
	return resp
}

type ProductResponse struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	ShortDescription string  `json:"shortDescription"`
	FullDescription  string  `json:"fullDescription"`
	Price            float64 `json:"price"`
	MainImage        string  `json:"mainImage"`
	CategoryID       *int64  `json:"productCategoryId,omitempty"`
}

func productToResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:               product.ID,
		Name:             product.Name,
		ShortDescription: product.ShortDescription,
		FullDescription:  product.FullDescription,
		Price:            product.Price,
		MainImage:        product.MainImage,
		CategoryID:       product.CategoryID,
	}
}

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func categoryToResponse(category domain.ProductCategory) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Image:       category.Image,
	}
}
