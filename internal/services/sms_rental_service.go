package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/vtuhub/vtuhub-backend/internal/models"
	"github.com/vtuhub/vtuhub-backend/internal/repositories"
	"github.com/vtuhub/vtuhub-backend/pkg/smsrental"
)

// ErrOrderNotFound is returned for unknown or foreign order IDs
var ErrOrderNotFound = errors.New("sms order not found")

// Compile-time check to ensure SMSRentalServiceImpl implements SMSRentalService
var _ SMSRentalService = (*SMSRentalServiceImpl)(nil)

// PollingConfig bounds one order's code polling loop
type PollingConfig struct {
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  int
}

// SMSRentalServiceImpl rents virtual numbers and runs one bounded,
// cancellable polling loop per waiting order. Exhausting the attempt
// budget flips the order to an explicit expired state rather than leaving
// it waiting forever.
type SMSRentalServiceImpl struct {
	orderRepo repositories.SMSOrderRepository
	inboxRepo repositories.InboxRepository
	gateway   smsrental.Gateway
	cfg       PollingConfig
	log       *zap.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewSMSRentalService creates a new SMSRentalServiceImpl
func NewSMSRentalService(
	orderRepo repositories.SMSOrderRepository,
	inboxRepo repositories.InboxRepository,
	gateway smsrental.Gateway,
	cfg PollingConfig,
	log *zap.Logger,
) *SMSRentalServiceImpl {
	return &SMSRentalServiceImpl{
		orderRepo: orderRepo,
		inboxRepo: inboxRepo,
		gateway:   gateway,
		cfg:       cfg,
		log:       log,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// CreateOrder rents a number and starts the polling loop for its code
func (s *SMSRentalServiceImpl) CreateOrder(ctx context.Context, userID primitive.ObjectID, req *models.SMSOrderRequest) (*models.SMSOrder, error) {
	providerOrder, err := s.gateway.CreateOrder(ctx, &smsrental.OrderRequest{
		Country:  req.Country,
		Service:  req.Service,
		Mode:     req.Mode,
		Provider: req.Provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sms order: %w", err)
	}

	order := &models.SMSOrder{
		UserID:      userID,
		OrderID:     providerOrder.OrderID,
		PhoneNumber: providerOrder.PhoneNumber,
		Country:     req.Country,
		Service:     req.Service,
		Status:      models.SMSOrderWaiting,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		// Release the number; we have no record to poll against.
		if cerr := s.gateway.CancelOrder(ctx, providerOrder.OrderID); cerr != nil {
			s.log.Warn("failed to release provider order", zap.String("orderId", providerOrder.OrderID), zap.Error(cerr))
		}
		return nil, fmt.Errorf("failed to persist sms order: %w", err)
	}

	// The loop outlives the request; it is cancelled via CancelOrder or Stop.
	pollCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[order.OrderID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.poll(pollCtx, order.OrderID, order.UserID, order.PhoneNumber)

	return order, nil
}

// poll asks the provider for the code at a fixed interval until a code
// arrives, the attempt budget runs out, or the context is cancelled
func (s *SMSRentalServiceImpl) poll(ctx context.Context, orderID string, userID primitive.ObjectID, phoneNumber string) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.cancels, orderID)
		s.mu.Unlock()
	}()

	if !sleepCtx(ctx, s.cfg.InitialDelay) {
		return
	}

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		code, err := s.gateway.GetCode(ctx, orderID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("sms code poll failed", zap.String("orderId", orderID), zap.Int("attempt", attempt), zap.Error(err))
		} else if code != "" {
			s.deliver(orderID, userID, phoneNumber, code, attempt)
			return
		}

		if attempt < s.cfg.MaxAttempts && !sleepCtx(ctx, s.cfg.Interval) {
			return
		}
	}

	// Budget exhausted: explicit terminal state, no inbox message.
	if err := s.orderRepo.UpdateStatus(context.Background(), orderID, models.SMSOrderExpired, "", s.cfg.MaxAttempts); err != nil {
		s.log.Error("failed to expire sms order", zap.String("orderId", orderID), zap.Error(err))
	}
	s.log.Warn("sms order expired without a code", zap.String("orderId", orderID), zap.Int("attempts", s.cfg.MaxAttempts))
}

// deliver records the received code and notifies the user's inbox
func (s *SMSRentalServiceImpl) deliver(orderID string, userID primitive.ObjectID, phoneNumber, code string, attempts int) {
	ctx := context.Background()
	if err := s.orderRepo.UpdateStatus(ctx, orderID, models.SMSOrderCodeReceived, code, attempts); err != nil {
		s.log.Error("failed to record received sms code", zap.String("orderId", orderID), zap.Error(err))
	}

	msg := &models.InboxMessage{
		UserID:    userID,
		Type:      models.InboxTypeSMSCode,
		Title:     "SMS Code Received",
		Message:   fmt.Sprintf("The verification code for %s is %s.", phoneNumber, code),
		Reference: orderID,
		Metadata:  map[string]interface{}{"code": code},
	}
	if err := s.inboxRepo.Create(ctx, msg); err != nil {
		s.log.Error("failed to create sms code inbox message", zap.String("orderId", orderID), zap.Error(err))
	}
}

// GetOrder returns one of the user's orders
func (s *SMSRentalServiceImpl) GetOrder(ctx context.Context, userID primitive.ObjectID, orderID string) (*models.SMSOrder, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrdersByUser lists the user's orders with pagination
func (s *SMSRentalServiceImpl) GetOrdersByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.SMSOrder, error) {
	return s.orderRepo.FindByUserID(ctx, userID, page, limit)
}

// CancelOrder aborts the polling loop, releases the number provider-side
// and records the cancelled state
func (s *SMSRentalServiceImpl) CancelOrder(ctx context.Context, userID primitive.ObjectID, orderID string) error {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if cancel, ok := s.cancels[orderID]; ok {
		cancel()
	}
	s.mu.Unlock()

	if err := s.gateway.CancelOrder(ctx, orderID); err != nil {
		s.log.Warn("provider cancel failed", zap.String("orderId", orderID), zap.Error(err))
	}

	return s.orderRepo.UpdateStatus(ctx, orderID, models.SMSOrderCancelled, "", order.Attempts)
}

// Stop cancels all active polling loops and waits for them to exit
func (s *SMSRentalServiceImpl) Stop() {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// sleepCtx waits d or until ctx is done; returns false on cancellation
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
