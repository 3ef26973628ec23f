package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID reads the authenticated user's ID set by the JWT middleware
func currentUserID(c *gin.Context) (primitive.ObjectID, error) {
	raw, ok := c.Get("userID")
	if !ok {
		return primitive.NilObjectID, errors.New("no authenticated user")
	}
	hex, ok := raw.(string)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid user id in context")
	}
	return primitive.ObjectIDFromHex(hex)
}

// mustUserID aborts with 401 when no valid user is on the context
func mustUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := currentUserID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// pagination parses the page/limit query parameters with defaults
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
