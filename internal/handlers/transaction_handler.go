package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vtuhub/vtuhub-backend/internal/services"
)

// TransactionHandler handles ledger HTTP requests
type TransactionHandler struct {
	transactionService services.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// GetTransactions handles GET /transactions
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	page, limit := pagination(c)

	txns, err := h.transactionService.GetTransactionsByUser(c, userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transactions: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, txns)
}

// GetTransactionByID handles GET /transactions/:id
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c, id)
	if err != nil || txn.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}

	c.JSON(http.StatusOK, txn)
}

// GetTransactionByReference handles GET /transactions/reference/:reference
func (h *TransactionHandler) GetTransactionByReference(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransactionByReference(c, c.Param("reference"))
	if err != nil || txn.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}

	c.JSON(http.StatusOK, txn)
}

// GetTransactionCount handles GET /transactions/count
func (h *TransactionHandler) GetTransactionCount(c *gin.Context) {
	count, err := h.transactionService.GetTransactionCount(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transaction count: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
