package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"web-store/internal/auth"
	"web-store/internal/domain"
	"web-store/internal/service"
)

type createOrderRequest struct {
	UserID int64 `json:"userId"`
	Items  []struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	} `json:"items"`
}

func (h *Handler) createOrder(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		h.unauthorized(c, errTokenCookieMissing)
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), principal, req.UserID, items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyOrder), errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrOwnershipMismatch):
			c.JSON(http.StatusForbidden, gin.H{"error": "orders can only be created for your own account"})
		default:
			h.internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, orderToResponse(*order))
}

func (h *Handler) ordersByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	orders, err := h.orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if len(orders) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "no orders found for this user"})
		return
	}

	resp := make([]OrderResponse, len(orders))
	for i := range orders {
		resp[i] = orderToResponse(orders[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) allOrders(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		h.unauthorized(c, errTokenCookieMissing)
		return
	}

	orders, err := h.orders.ListAll(c.Request.Context(), principal)
	if err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		h.internalError(c, err)
		return
	}

	resp := make([]OrderResponse, len(orders))
	for i := range orders {
		resp[i] = orderToResponse(orders[i])
	}
	c.JSON(http.StatusOK, resp)
}

type updateOrderStatusRequest struct {
	OrderID   int64              `json:"orderId" binding:"required"`
	NewStatus domain.OrderStatus `json:"newStatus" binding:"required"`
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		h.unauthorized(c, errTokenCookieMissing)
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.orders.ChangeStatus(c.Request.Context(), principal, req.OrderID, req.NewStatus); err != nil {
		switch {
		case errors.Is(err, auth.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		default:
			h.internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order status updated"})
}
