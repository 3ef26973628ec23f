package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vtuhub/vtuhub-backend/internal/models"
	"github.com/vtuhub/vtuhub-backend/internal/services"
)

// UserHandler handles user profile and wallet HTTP requests
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetWallet handles GET /users/me/wallet
func (h *UserHandler) GetWallet(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": user.WalletBalance})
}

// FundWallet handles POST /wallet/fund
func (h *UserHandler) FundWallet(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req models.FundWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := h.userService.FundWallet(c, userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fund wallet: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, txn)
}
