package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/vtuhub/vtuhub-backend/internal/repositories"
	"github.com/vtuhub/vtuhub-backend/internal/services"
)

// InboxHandler handles inbox and notification watcher HTTP requests
type InboxHandler struct {
	inboxService  services.InboxService
	inboxRepo     repositories.InboxRepository
	txnRepo       repositories.TransactionRepository
	watchInterval time.Duration
	log           *zap.Logger
}

// NewInboxHandler creates a new InboxHandler. The repositories are needed
// directly because each watch connection builds its own NotifyWatcher.
func NewInboxHandler(
	inboxService services.InboxService,
	inboxRepo repositories.InboxRepository,
	txnRepo repositories.TransactionRepository,
	watchInterval time.Duration,
	log *zap.Logger,
) *InboxHandler {
	return &InboxHandler{
		inboxService:  inboxService,
		inboxRepo:     inboxRepo,
		txnRepo:       txnRepo,
		watchInterval: watchInterval,
		log:           log,
	}
}

// GetMessages handles GET /inbox
func (h *InboxHandler) GetMessages(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	page, limit := pagination(c)

	msgs, err := h.inboxService.GetMessagesByUser(c, userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get messages: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, msgs)
}

// MarkRead handles PUT /inbox/:id/read
func (h *InboxHandler) MarkRead(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.inboxService.MarkRead(c, id, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

// GetCounts handles GET /inbox/counts
func (h *InboxHandler) GetCounts(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	counts, err := h.inboxService.GetCounts(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get counts: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, counts)
}

// Watch handles GET /inbox/watch. It streams counter-increase alerts as
// server-sent events for the lifetime of the connection; disconnecting
// stops the watcher.
func (h *InboxHandler) Watch(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	watcher := services.NewNotifyWatcher(userID, h.inboxRepo, h.txnRepo, h.watchInterval, h.log)
	watcher.Start(c.Request.Context())
	defer watcher.Stop()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case alert, open := <-watcher.Alerts():
			if !open {
				return false
			}
			c.SSEvent("alert", alert)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
