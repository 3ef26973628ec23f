package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vtuhub/vtuhub-backend/internal/models"
	"github.com/vtuhub/vtuhub-backend/pkg/vtuapi"
)

type fakeVTUGateway struct {
	mu            sync.Mutex
	purchaseCalls int
	verifyCalls   int
	purchaseData  *vtuapi.PurchaseData
	purchaseErr   error
	verifyData    vtuapi.VerifyData
	verifyErr     error
}

func (g *fakeVTUGateway) Verify(_ context.Context, _, _, _ string) (vtuapi.VerifyData, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	return g.verifyData, g.verifyErr
}

func (g *fakeVTUGateway) Purchase(_ context.Context, _ *vtuapi.PurchaseRequest) (*vtuapi.PurchaseData, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.purchaseCalls++
	if g.purchaseErr != nil {
		return nil, g.purchaseErr
	}
	return g.purchaseData, nil
}

func (g *fakeVTUGateway) Status(_ context.Context, _ string) (*vtuapi.StatusData, error) {
	return &vtuapi.StatusData{Status: "completed"}, nil
}

func (g *fakeVTUGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.purchaseCalls
}

type purchaseFixture struct {
	users   *memUserRepo
	txns    *memTxnRepo
	inbox   *memInboxRepo
	gateway *fakeVTUGateway
	svc     *PurchaseServiceImpl
}

func newPurchaseFixture(gateway *fakeVTUGateway) *purchaseFixture {
	users := newMemUserRepo()
	txns := newMemTxnRepo()
	inbox := newMemInboxRepo()
	return &purchaseFixture{
		users:   users,
		txns:    txns,
		inbox:   inbox,
		gateway: gateway,
		svc:     NewPurchaseService(users, txns, inbox, gateway, zap.NewNop()),
	}
}

func TestExecuteDataPurchaseSuccess(t *testing.T) {
	f := newPurchaseFixture(&fakeVTUGateway{purchaseData: &vtuapi.PurchaseData{ProviderRef: "prov-123"}})
	userID := f.users.add(&models.User{Email: "ada@example.com", WalletBalance: 1000})

	receipt, err := f.svc.Execute(context.Background(), userID, &models.PurchaseRequest{
		Kind:        models.PurchaseKindData,
		ServiceID:   "mtn_data",
		CustomerID:  "08031234567",
		VariationID: "1gb_30days",
		Amount:      250,
	})
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.True(t, strings.HasPrefix(receipt.Reference, "DATA"))
	assert.Equal(t, models.TransactionCompleted, receipt.Status)
	assert.Equal(t, 750.0, f.users.balance(userID))

	txn := f.txns.single(userID)
	require.NotNil(t, txn)
	assert.Equal(t, models.TransactionCompleted, txn.Status)
	assert.Equal(t, models.TransactionDebit, txn.Type)
	assert.Equal(t, models.PurchaseStateSettled, txn.PurchaseState)
	assert.Equal(t, "prov-123", txn.Metadata["providerRef"])
	// Exactly one terminal transition.
	assert.Equal(t, 1, f.txns.updates(txn.ID))

	msgs := f.inbox.forUser(userID)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.InboxTypeDataReceipt, msgs[0].Type)
	assert.Equal(t, receipt.Reference, msgs[0].Reference)
}

func TestExecuteElectricityDeliversToken(t *testing.T) {
	f := newPurchaseFixture(&fakeVTUGateway{purchaseData: &vtuapi.PurchaseData{
		Token: "1234-5678-9012-3456",
		Units: "45.6kWh",
	}})
	userID := f.users.add(&models.User{Email: "ada@example.com", WalletBalance: 5000})

	receipt, err := f.svc.Execute(context.Background(), userID, &models.PurchaseRequest{
		Kind:        models.PurchaseKindElectricity,
		ServiceID:   "ikeja-electric",
		CustomerID:  "04123456789",
		VariationID: "prepaid",
		Amount:      2000,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(receipt.Reference, "ELEC"))
	assert.Equal(t, "1234-5678-9012-3456", receipt.Token)
	assert.Equal(t, "45.6kWh", receipt.Units)

	txn := f.txns.single(userID)
	require.NotNil(t, txn)
	assert.Equal(t, "1234-5678-9012-3456", txn.Metadata["token"])
	assert.Equal(t, "45.6kWh", txn.Metadata["units"])

	msgs := f.inbox.forUser(userID)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.InboxTypeElectricityToken, msgs[0].Type)
	assert.Contains(t, msgs[0].Message, "1234-5678-9012-3456")
}

func TestExecuteProviderFailureRefundsWallet(t *testing.T) {
	f := newPurchaseFixture(&fakeVTUGateway{purchaseErr: &vtuapi.GatewayError{Message: "Service temporarily unavailable"}})
	userID := f.users.add(&models.User{Email: "ada@example.com", WalletBalance: 1000})

	_, err := f.svc.Execute(context.Background(), userID, &models.PurchaseRequest{
		Kind:       models.PurchaseKindAirtime,
		ServiceID:  "mtn",
		CustomerID: "08031234567",
		Amount:     500,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Service temporarily unavailable")

	// Wallet ends where it started.
	assert.Equal(t, 1000.0, f.users.balance(userID))

	txn := f.txns.single(userID)
	require.NotNil(t, txn)
	assert.Equal(t, models.TransactionFailed, txn.Status)
	assert.Equal(t, models.PurchaseStateCompensated, txn.PurchaseState)
	assert.Equal(t, "Service temporarily unavailable", txn.Metadata["error"])
	assert.Equal(t, 1, f.txns.updates(txn.ID))

	msgs := f.inbox.forUser(userID)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Refund Notification", msgs[0].Title)
	assert.Equal(t, models.InboxTypeGeneral, msgs[0].Type)
	assert.Equal(t, 500.0, msgs[0].Metadata["amountRefunded"])
}

func TestExecuteInsufficientBalanceSkipsGateway(t *testing.T) {
	f := newPurchaseFixture(&fakeVTUGateway{purchaseData: &vtuapi.PurchaseData{}})
	userID := f.users.add(&models.User{Email: "ada@example.com", WalletBalance: 100})

	_, err := f.svc.Execute(context.Background(), userID, &models.PurchaseRequest{
		Kind:       models.PurchaseKindAirtime,
		ServiceID:  "mtn",
		CustomerID: "08031234567",
		Amount:     500,
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	assert.Equal(t, 0, f.gateway.calls())
	assert.Nil(t, f.txns.single(userID))
	assert.Equal(t, 100.0, f.users.balance(userID))
}

func TestExecuteValidation(t *testing.T) {
	f := newPurchaseFixture(&fakeVTUGateway{})
	userID := f.users.add(&models.User{Email: "ada@example.com", WalletBalance: 1000})

	_, err := f.svc.Execute(context.Background(), userID, &models.PurchaseRequest{
		Kind: "insurance", CustomerID: "x", Amount: 100,
	})
	assert.ErrorIs(t, err, ErrUnknownPurchaseKind)

	_, err = f.svc.Execute(context.Background(), userID, &models.PurchaseRequest{
		Kind: models.PurchaseKindAirtime, CustomerID: "08031234567", Amount: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.svc.Execute(context.Background(), userID, &models.PurchaseRequest{
		Kind: models.PurchaseKindAirtime, CustomerID: "", Amount: 100,
	})
	assert.ErrorIs(t, err, ErrCustomerRequired)

	assert.Equal(t, 0, f.gateway.calls())
}

func TestExecuteCompensationFailureKeepsPrimaryError(t *testing.T) {
	f := newPurchaseFixture(&fakeVTUGateway{purchaseErr: errors.New("upstream timeout")})
	userID := f.users.add(&models.User{Email: "ada@example.com", WalletBalance: 1000})

	// Ledger status writes fail; the caller must still see the provider error.
	f.txns.updateErr = errors.New("write concern failure")

	_, err := f.svc.Execute(context.Background(), userID, &models.PurchaseRequest{
		Kind:       models.PurchaseKindBetting,
		ServiceID:  "bet9ja",
		CustomerID: "ACC-5521",
		Amount:     300,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream timeout")
	assert.NotContains(t, err.Error(), "write concern failure")
	// The refund still went through even though the status write did not.
	assert.Equal(t, 1000.0, f.users.balance(userID))
}

func TestExecuteRefundFailureLeavesCompensationPending(t *testing.T) {
	f := newPurchaseFixture(&fakeVTUGateway{purchaseErr: errors.New("provider rejected request")})
	userID := f.users.add(&models.User{Email: "ada@example.com", WalletBalance: 1000})

	// Debit succeeds, the credit back does not.
	f.users.creditErr = errors.New("write concern failure")

	_, err := f.svc.Execute(context.Background(), userID, &models.PurchaseRequest{
		Kind:       models.PurchaseKindTV,
		ServiceID:  "dstv",
		CustomerID: "7023456789",
		Amount:     200,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider rejected request")

	txn := f.txns.single(userID)
	require.NotNil(t, txn)
	assert.Equal(t, models.TransactionFailed, txn.Status)
	assert.Equal(t, models.PurchaseStateCompensationPending, txn.PurchaseState)
	// The money is still held; only the saga state records the debt.
	assert.Equal(t, 800.0, f.users.balance(userID))
}

func TestExecuteEachPurchaseGetsUniqueReference(t *testing.T) {
	f := newPurchaseFixture(&fakeVTUGateway{purchaseData: &vtuapi.PurchaseData{}})
	userID := f.users.add(&models.User{Email: "ada@example.com", WalletBalance: 10000})

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		receipt, err := f.svc.Execute(context.Background(), userID, &models.PurchaseRequest{
			Kind:       models.PurchaseKindAirtime,
			ServiceID:  "mtn",
			CustomerID: "08031234567",
			Amount:     100,
		})
		require.NoError(t, err)
		assert.False(t, seen[receipt.Reference], "duplicate reference %s", receipt.Reference)
		seen[receipt.Reference] = true
	}
	assert.Equal(t, 9500.0, f.users.balance(userID))
}

func TestVerifyReturnsCustomerName(t *testing.T) {
	f := newPurchaseFixture(&fakeVTUGateway{verifyData: vtuapi.VerifyData{
		"data": map[string]interface{}{"customer_name": "ADAEZE OKONKWO"},
	}})

	result, err := f.svc.Verify(context.Background(), &models.VerifyRequest{
		ServiceID:  "ikeja-electric",
		CustomerID: "04123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, "ADAEZE OKONKWO", result.CustomerName)
}

func TestVerifyPropagatesGatewayError(t *testing.T) {
	f := newPurchaseFixture(&fakeVTUGateway{verifyErr: &vtuapi.GatewayError{Message: "Invalid meter number"}})

	_, err := f.svc.Verify(context.Background(), &models.VerifyRequest{
		ServiceID:  "ikeja-electric",
		CustomerID: "000",
	})
	require.Error(t, err)

	var gerr *vtuapi.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "Invalid meter number", gerr.Message)
}
