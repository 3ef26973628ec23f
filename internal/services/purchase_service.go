package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/vtuhub/vtuhub-backend/internal/models"
	"github.com/vtuhub/vtuhub-backend/internal/repositories"
	"github.com/vtuhub/vtuhub-backend/internal/utils"
	"github.com/vtuhub/vtuhub-backend/pkg/vtuapi"
)

// Compile-time check to ensure PurchaseServiceImpl implements PurchaseService
var _ PurchaseService = (*PurchaseServiceImpl)(nil)

// referencePrefixes maps purchase kinds to ledger reference prefixes
var referencePrefixes = map[string]string{
	models.PurchaseKindAirtime:     "AIR",
	models.PurchaseKindData:        "DATA",
	models.PurchaseKindTV:          "TV",
	models.PurchaseKindElectricity: "ELEC",
	models.PurchaseKindBetting:     "BET",
}

// inboxTypes maps purchase kinds to the inbox message type of their receipt
var inboxTypes = map[string]string{
	models.PurchaseKindAirtime:     models.InboxTypeAirtimeReceipt,
	models.PurchaseKindData:        models.InboxTypeDataReceipt,
	models.PurchaseKindTV:          models.InboxTypeTVReceipt,
	models.PurchaseKindElectricity: models.InboxTypeElectricityToken,
	models.PurchaseKindBetting:     models.InboxTypeBettingReceipt,
}

// PurchaseServiceImpl sequences one purchase: validate, open a processing
// transaction, debit the wallet, call the provider, then settle or
// compensate. Each step's saga state lands on the transaction so a lost
// settlement is visible instead of an implicit race.
type PurchaseServiceImpl struct {
	userRepo  repositories.UserRepository
	txnRepo   repositories.TransactionRepository
	inboxRepo repositories.InboxRepository
	gateway   vtuapi.Gateway
	log       *zap.Logger
}

// NewPurchaseService creates a new PurchaseServiceImpl
func NewPurchaseService(
	userRepo repositories.UserRepository,
	txnRepo repositories.TransactionRepository,
	inboxRepo repositories.InboxRepository,
	gateway vtuapi.Gateway,
	log *zap.Logger,
) *PurchaseServiceImpl {
	return &PurchaseServiceImpl{
		userRepo:  userRepo,
		txnRepo:   txnRepo,
		inboxRepo: inboxRepo,
		gateway:   gateway,
		log:       log,
	}
}

// Verify asks the provider who owns the customer identifier. Advisory only:
// a failed verification does not block a later purchase.
func (s *PurchaseServiceImpl) Verify(ctx context.Context, req *models.VerifyRequest) (*models.VerifyResult, error) {
	data, err := s.gateway.Verify(ctx, req.ServiceID, req.CustomerID, req.VariationID)
	if err != nil {
		return nil, err
	}
	return &models.VerifyResult{CustomerName: vtuapi.CustomerName(data)}, nil
}

// Execute drives one purchase to a terminal transaction and inbox message.
// The wallet guard runs before any gateway traffic.
func (s *PurchaseServiceImpl) Execute(ctx context.Context, userID primitive.ObjectID, req *models.PurchaseRequest) (*models.PurchaseReceipt, error) {
	prefix, ok := referencePrefixes[req.Kind]
	if !ok {
		return nil, ErrUnknownPurchaseKind
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.CustomerID == "" {
		return nil, ErrCustomerRequired
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if req.Amount > user.WalletBalance {
		return nil, ErrInsufficientBalance
	}

	reference := utils.NewReference(prefix)
	txn := &models.Transaction{
		UserID:        userID,
		Type:          models.TransactionDebit,
		Amount:        req.Amount,
		Description:   fmt.Sprintf("%s purchase for %s", req.Kind, req.CustomerID),
		Reference:     reference,
		Status:        models.TransactionProcessing,
		PurchaseState: models.PurchaseStateCreated,
		Metadata: map[string]interface{}{
			"kind":        req.Kind,
			"serviceId":   req.ServiceID,
			"customerId":  req.CustomerID,
			"variationId": req.VariationID,
		},
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := s.userRepo.IncrementWalletBalance(ctx, userID, -req.Amount); err != nil {
		// Nothing left the building yet; fail the transaction and bail.
		if uerr := s.txnRepo.UpdateStatus(ctx, txn.ID, models.TransactionFailed, map[string]interface{}{"error": err.Error()}); uerr != nil {
			s.log.Error("failed to mark transaction failed after debit error",
				zap.String("reference", reference), zap.Error(uerr))
		}
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}

	if err := s.txnRepo.UpdatePurchaseState(ctx, txn.ID, models.PurchaseStateProviderCalled); err != nil {
		s.log.Warn("failed to record provider_called state", zap.String("reference", reference), zap.Error(err))
	}

	result, err := s.gateway.Purchase(ctx, &vtuapi.PurchaseRequest{
		ServiceID:   req.ServiceID,
		CustomerID:  req.CustomerID,
		VariationID: req.VariationID,
		Amount:      req.Amount,
		Reference:   reference,
	})
	if err != nil {
		s.compensate(ctx, txn, req, err)
		return nil, err
	}

	return s.settle(ctx, txn, req, result), nil
}

// settle completes the transaction with delivery metadata and writes the
// typed receipt message. Ledger failures here are logged, not returned:
// the provider already delivered and the user must see a success.
func (s *PurchaseServiceImpl) settle(ctx context.Context, txn *models.Transaction, req *models.PurchaseRequest, result *vtuapi.PurchaseData) *models.PurchaseReceipt {
	metadata := map[string]interface{}{}
	if result.Token != "" {
		metadata["token"] = result.Token
	}
	if result.Units != "" {
		metadata["units"] = result.Units
	}
	if result.ProviderRef != "" {
		metadata["providerRef"] = result.ProviderRef
	}

	settled := true
	if err := s.txnRepo.UpdateStatus(ctx, txn.ID, models.TransactionCompleted, metadata); err != nil {
		// The ledger now disagrees with reality. The saga state stays at
		// provider_called so the divergence is queryable.
		settled = false
		s.log.Error("provider delivered but ledger update failed",
			zap.String("reference", txn.Reference), zap.Error(err))
	}
	if settled {
		if err := s.txnRepo.UpdatePurchaseState(ctx, txn.ID, models.PurchaseStateSettled); err != nil {
			s.log.Warn("failed to record settled state", zap.String("reference", txn.Reference), zap.Error(err))
		}
	}

	title, message := receiptContent(req, result)
	msg := &models.InboxMessage{
		UserID:    txn.UserID,
		Type:      inboxTypes[req.Kind],
		Title:     title,
		Message:   message,
		Reference: txn.Reference,
		Metadata:  metadata,
	}
	if err := s.inboxRepo.Create(ctx, msg); err != nil {
		s.log.Error("failed to create receipt inbox message",
			zap.String("reference", txn.Reference), zap.Error(err))
	}

	return &models.PurchaseReceipt{
		Reference: txn.Reference,
		Status:    models.TransactionCompleted,
		Amount:    txn.Amount,
		Token:     result.Token,
		Units:     result.Units,
		Message:   message,
	}
}

// compensate credits the wallet back, fails the transaction and announces
// the refund. Every step is best effort: a compensation failure is logged
// and must never mask the primary provider error shown to the caller.
func (s *PurchaseServiceImpl) compensate(ctx context.Context, txn *models.Transaction, req *models.PurchaseRequest, cause error) {
	state := models.PurchaseStateCompensated
	if err := s.userRepo.IncrementWalletBalance(ctx, txn.UserID, txn.Amount); err != nil {
		state = models.PurchaseStateCompensationPending
		s.log.Error("failed to refund wallet after provider failure",
			zap.String("reference", txn.Reference), zap.Error(err))
	}

	if err := s.txnRepo.UpdateStatus(ctx, txn.ID, models.TransactionFailed, map[string]interface{}{"error": cause.Error()}); err != nil {
		s.log.Error("failed to mark transaction failed",
			zap.String("reference", txn.Reference), zap.Error(err))
	}
	if err := s.txnRepo.UpdatePurchaseState(ctx, txn.ID, state); err != nil {
		s.log.Warn("failed to record compensation state", zap.String("reference", txn.Reference), zap.Error(err))
	}

	msg := &models.InboxMessage{
		UserID: txn.UserID,
		Type:   models.InboxTypeGeneral,
		Title:  "Refund Notification",
		Message: fmt.Sprintf("Your %s purchase of %.2f could not be completed: %s. The amount has been refunded to your wallet.",
			req.Kind, txn.Amount, cause.Error()),
		Reference: txn.Reference,
		Metadata: map[string]interface{}{
			"amountRefunded": txn.Amount,
		},
	}
	if err := s.inboxRepo.Create(ctx, msg); err != nil {
		s.log.Error("failed to create refund inbox message",
			zap.String("reference", txn.Reference), zap.Error(err))
	}
}

// receiptContent builds the human-readable delivery payload per kind
func receiptContent(req *models.PurchaseRequest, result *vtuapi.PurchaseData) (string, string) {
	switch req.Kind {
	case models.PurchaseKindElectricity:
		return "Electricity Token",
			fmt.Sprintf("Your electricity token for meter %s is %s (%s).", req.CustomerID, result.Token, result.Units)
	case models.PurchaseKindData:
		return "Data Purchase Successful",
			fmt.Sprintf("Your data bundle for %s has been delivered.", req.CustomerID)
	case models.PurchaseKindAirtime:
		return "Airtime Purchase Successful",
			fmt.Sprintf("Airtime of %.2f has been delivered to %s.", req.Amount, req.CustomerID)
	case models.PurchaseKindTV:
		return "TV Subscription Successful",
			fmt.Sprintf("Your TV subscription for card %s has been renewed.", req.CustomerID)
	case models.PurchaseKindBetting:
		return "Betting Wallet Funded",
			fmt.Sprintf("Your betting account %s has been credited with %.2f.", req.CustomerID, req.Amount)
	default:
		return "Purchase Successful", "Your purchase has been delivered."
	}
}
