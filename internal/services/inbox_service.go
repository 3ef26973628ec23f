package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vtuhub/vtuhub-backend/internal/models"
	"github.com/vtuhub/vtuhub-backend/internal/repositories"
)

// Compile-time check to ensure InboxServiceImpl implements InboxService
var _ InboxService = (*InboxServiceImpl)(nil)

// recentDepositWindow bounds the "recent deposits" counter
const recentDepositWindow = 24 * time.Hour

// InboxServiceImpl handles inbox reads and the mark-read flip
type InboxServiceImpl struct {
	inboxRepo repositories.InboxRepository
	txnRepo   repositories.TransactionRepository
}

// NewInboxService creates a new InboxServiceImpl
func NewInboxService(inboxRepo repositories.InboxRepository, txnRepo repositories.TransactionRepository) *InboxServiceImpl {
	return &InboxServiceImpl{
		inboxRepo: inboxRepo,
		txnRepo:   txnRepo,
	}
}

// GetMessagesByUser retrieves a user's inbox with pagination
func (s *InboxServiceImpl) GetMessagesByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.InboxMessage, error) {
	return s.inboxRepo.FindByUserID(ctx, userID, page, limit)
}

// MarkRead marks one of the user's messages as read
func (s *InboxServiceImpl) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	return s.inboxRepo.MarkRead(ctx, id, userID)
}

// GetCounts returns the counters the notification UI polls
func (s *InboxServiceImpl) GetCounts(ctx context.Context, userID primitive.ObjectID) (*models.InboxCounts, error) {
	unread, err := s.inboxRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	support, err := s.inboxRepo.CountUnreadByType(ctx, userID, models.InboxTypeSupportReply)
	if err != nil {
		return nil, err
	}
	deposits, err := s.txnRepo.CountSince(ctx, userID, models.TransactionCredit, time.Now().Add(-recentDepositWindow))
	if err != nil {
		return nil, err
	}
	return &models.InboxCounts{
		UnreadInbox:    unread,
		UnreadSupport:  support,
		RecentDeposits: deposits,
	}, nil
}
