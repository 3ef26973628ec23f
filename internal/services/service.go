package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vtuhub/vtuhub-backend/internal/models"
)

// Validation errors rejected before any network call
var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrCustomerRequired    = errors.New("customer identifier is required")
	ErrUnknownPurchaseKind = errors.New("unknown purchase kind")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// UserService defines the interface for user-related operations
type UserService interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FundWallet(ctx context.Context, userID primitive.ObjectID, req *models.FundWalletRequest) (*models.Transaction, error)
}

// PurchaseService drives one purchase from submitted form values to a
// terminal transaction plus inbox message, across the provider boundary
type PurchaseService interface {
	Execute(ctx context.Context, userID primitive.ObjectID, req *models.PurchaseRequest) (*models.PurchaseReceipt, error)
	Verify(ctx context.Context, req *models.VerifyRequest) (*models.VerifyResult, error)
}

// TransactionService defines the interface for ledger reads
type TransactionService interface {
	GetTransactionsByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Transaction, error)
	GetTransactionByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
	GetTransactionCount(ctx context.Context) (int64, error)
}

// InboxService defines the interface for inbox operations
type InboxService interface {
	GetMessagesByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.InboxMessage, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	GetCounts(ctx context.Context, userID primitive.ObjectID) (*models.InboxCounts, error)
}

// SMSRentalService manages virtual number rentals and their polling loops
type SMSRentalService interface {
	CreateOrder(ctx context.Context, userID primitive.ObjectID, req *models.SMSOrderRequest) (*models.SMSOrder, error)
	GetOrder(ctx context.Context, userID primitive.ObjectID, orderID string) (*models.SMSOrder, error)
	GetOrdersByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.SMSOrder, error)
	CancelOrder(ctx context.Context, userID primitive.ObjectID, orderID string) error
	// Stop cancels every active polling loop and waits for them to exit.
	Stop()
}
