package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vtuhub/vtuhub-backend/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// IncrementWalletBalance atomically moves the balance by delta
	// (negative for debits). The wallet is server-authoritative.
	IncrementWalletBalance(ctx context.Context, id primitive.ObjectID, delta float64) error
	Count(ctx context.Context) (int64, error)
}

// TransactionRepository defines the interface for ledger operations
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	FindByReference(ctx context.Context, reference string) (*models.Transaction, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Transaction, error)
	// UpdateStatus flips the status and merges metadata keys into the
	// existing document; it never replaces the metadata map wholesale.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, metadata map[string]interface{}) error
	UpdatePurchaseState(ctx context.Context, id primitive.ObjectID, state string) error
	CountByTypeAndStatus(ctx context.Context, userID primitive.ObjectID, txnType, status string) (int64, error)
	CountSince(ctx context.Context, userID primitive.ObjectID, txnType string, since time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// InboxRepository defines the interface for inbox message operations
type InboxRepository interface {
	Create(ctx context.Context, msg *models.InboxMessage) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.InboxMessage, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.InboxMessage, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountUnreadByType(ctx context.Context, userID primitive.ObjectID, msgType string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// SMSOrderRepository defines the interface for SMS rental order operations
type SMSOrderRepository interface {
	Create(ctx context.Context, order *models.SMSOrder) error
	FindByOrderID(ctx context.Context, orderID string) (*models.SMSOrder, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.SMSOrder, error)
	// UpdateStatus records the terminal state, the received code (may be
	// empty) and the number of polling attempts spent.
	UpdateStatus(ctx context.Context, orderID, status, code string, attempts int) error
}
