package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vtuhub/vtuhub-backend/internal/models"
	"github.com/vtuhub/vtuhub-backend/internal/services"
	"github.com/vtuhub/vtuhub-backend/pkg/vtuapi"
)

// PurchaseHandler handles purchase orchestration HTTP requests
type PurchaseHandler struct {
	purchaseService services.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// Execute handles POST /purchases
func (h *PurchaseHandler) Execute(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.purchaseService.Execute(c, userID, &req)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, services.ErrInvalidAmount),
			errors.Is(err, services.ErrCustomerRequired),
			errors.Is(err, services.ErrUnknownPurchaseKind):
			status = http.StatusBadRequest
		case errors.Is(err, services.ErrInsufficientBalance):
			status = http.StatusPaymentRequired
		}
		// Provider-reported messages are safe to surface verbatim.
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// Verify handles POST /purchases/verify
func (h *PurchaseHandler) Verify(c *gin.Context) {
	if _, ok := mustUserID(c); !ok {
		return
	}

	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.purchaseService.Verify(c, &req)
	if err != nil {
		if errors.Is(err, vtuapi.ErrUnexpectedResponse) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Unexpected response from provider"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
