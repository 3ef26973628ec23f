package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/vtuhub/vtuhub-backend/internal/models"
	"github.com/vtuhub/vtuhub-backend/internal/repositories"
	"github.com/vtuhub/vtuhub-backend/internal/utils"
)

// Compile-time check to ensure UserServiceImpl implements UserService
var _ UserService = (*UserServiceImpl)(nil)

// UserServiceImpl handles user profile and wallet funding
type UserServiceImpl struct {
	userRepo  repositories.UserRepository
	txnRepo   repositories.TransactionRepository
	inboxRepo repositories.InboxRepository
	log       *zap.Logger
}

// NewUserService creates a new UserServiceImpl
func NewUserService(
	userRepo repositories.UserRepository,
	txnRepo repositories.TransactionRepository,
	inboxRepo repositories.InboxRepository,
	log *zap.Logger,
) *UserServiceImpl {
	return &UserServiceImpl{
		userRepo:  userRepo,
		txnRepo:   txnRepo,
		inboxRepo: inboxRepo,
		log:       log,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserServiceImpl) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// FundWallet records a confirmed deposit: a completed credit transaction
// plus the balance increment. Settlement happened upstream.
func (s *UserServiceImpl) FundWallet(ctx context.Context, userID primitive.ObjectID, req *models.FundWalletRequest) (*models.Transaction, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	reference := req.Reference
	if reference == "" {
		reference = utils.NewReference("DEP")
	}

	txn := &models.Transaction{
		UserID:      userID,
		Type:        models.TransactionCredit,
		Amount:      req.Amount,
		Description: "Wallet funding",
		Reference:   reference,
		Status:      models.TransactionCompleted,
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}

	if err := s.userRepo.IncrementWalletBalance(ctx, userID, req.Amount); err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	msg := &models.InboxMessage{
		UserID:    userID,
		Type:      models.InboxTypeGeneral,
		Title:     "Deposit Received",
		Message:   fmt.Sprintf("Your wallet has been credited with %.2f.", req.Amount),
		Reference: reference,
	}
	if err := s.inboxRepo.Create(ctx, msg); err != nil {
		s.log.Warn("failed to create deposit inbox message", zap.String("reference", reference), zap.Error(err))
	}

	return txn, nil
}
