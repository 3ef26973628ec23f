package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vtuhub/vtuhub-backend/internal/models"
	"github.com/vtuhub/vtuhub-backend/internal/repositories"
)

// Compile-time check to ensure TransactionServiceImpl implements TransactionService
var _ TransactionService = (*TransactionServiceImpl)(nil)

// TransactionServiceImpl handles ledger reads
type TransactionServiceImpl struct {
	txnRepo repositories.TransactionRepository
}

// NewTransactionService creates a new TransactionServiceImpl
func NewTransactionService(txnRepo repositories.TransactionRepository) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		txnRepo: txnRepo,
	}
}

// GetTransactionsByUser retrieves a user's transactions with pagination
func (s *TransactionServiceImpl) GetTransactionsByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Transaction, error) {
	return s.txnRepo.FindByUserID(ctx, userID, page, limit)
}

// GetTransactionByID retrieves a transaction by ID
func (s *TransactionServiceImpl) GetTransactionByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	return s.txnRepo.FindByID(ctx, id)
}

// GetTransactionByReference retrieves a transaction by its reference string
func (s *TransactionServiceImpl) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	return s.txnRepo.FindByReference(ctx, reference)
}

// GetTransactionCount gets the total number of transactions
func (s *TransactionServiceImpl) GetTransactionCount(ctx context.Context) (int64, error) {
	return s.txnRepo.Count(ctx)
}
