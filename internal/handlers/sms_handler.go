package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vtuhub/vtuhub-backend/internal/models"
	"github.com/vtuhub/vtuhub-backend/internal/services"
)

// SMSHandler handles SMS number rental HTTP requests
type SMSHandler struct {
	smsService services.SMSRentalService
}

// NewSMSHandler creates a new SMSHandler
func NewSMSHandler(smsService services.SMSRentalService) *SMSHandler {
	return &SMSHandler{
		smsService: smsService,
	}
}

// CreateOrder handles POST /sms/orders
func (h *SMSHandler) CreateOrder(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req models.SMSOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.smsService.CreateOrder(c, userID, &req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create order: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrders handles GET /sms/orders
func (h *SMSHandler) GetOrders(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	page, limit := pagination(c)

	orders, err := h.smsService.GetOrdersByUser(c, userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /sms/orders/:orderId
func (h *SMSHandler) GetOrder(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	order, err := h.smsService.GetOrder(c, userID, c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// CancelOrder handles DELETE /sms/orders/:orderId
func (h *SMSHandler) CancelOrder(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.smsService.CancelOrder(c, userID, c.Param("orderId")); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled"})
}
