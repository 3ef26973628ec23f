package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vtuhub/vtuhub-backend/internal/models"
)

func TestFundWalletCreditsBalanceAndLedger(t *testing.T) {
	users := newMemUserRepo()
	txns := newMemTxnRepo()
	inbox := newMemInboxRepo()
	svc := NewUserService(users, txns, inbox, zap.NewNop())

	userID := users.add(&models.User{Email: "ada@example.com", WalletBalance: 500})

	txn, err := svc.FundWallet(context.Background(), userID, &models.FundWalletRequest{Amount: 2500})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionCredit, txn.Type)
	assert.Equal(t, models.TransactionCompleted, txn.Status)
	assert.True(t, strings.HasPrefix(txn.Reference, "DEP"))
	assert.Equal(t, 3000.0, users.balance(userID))

	msgs := inbox.forUser(userID)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Deposit Received", msgs[0].Title)
	assert.Equal(t, txn.Reference, msgs[0].Reference)
}

func TestFundWalletKeepsCallerReference(t *testing.T) {
	users := newMemUserRepo()
	svc := NewUserService(users, newMemTxnRepo(), newMemInboxRepo(), zap.NewNop())
	userID := users.add(&models.User{Email: "ada@example.com"})

	txn, err := svc.FundWallet(context.Background(), userID, &models.FundWalletRequest{
		Amount:    1000,
		Reference: "PSK-8812734",
	})
	require.NoError(t, err)
	assert.Equal(t, "PSK-8812734", txn.Reference)
}

func TestFundWalletRejectsNonPositiveAmount(t *testing.T) {
	users := newMemUserRepo()
	svc := NewUserService(users, newMemTxnRepo(), newMemInboxRepo(), zap.NewNop())
	userID := users.add(&models.User{Email: "ada@example.com", WalletBalance: 500})

	_, err := svc.FundWallet(context.Background(), userID, &models.FundWalletRequest{Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.FundWallet(context.Background(), userID, &models.FundWalletRequest{Amount: -10})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, 500.0, users.balance(userID))
}

func TestGetUserByIDStripsPassword(t *testing.T) {
	users := newMemUserRepo()
	svc := NewUserService(users, newMemTxnRepo(), newMemInboxRepo(), zap.NewNop())
	userID := users.add(&models.User{Email: "ada@example.com", Password: "bcrypt-hash"})

	user, err := svc.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, user.Password)
}
