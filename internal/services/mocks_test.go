package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vtuhub/vtuhub-backend/internal/models"
)

// ---- in-memory user repository ----

type memUserRepo struct {
	mu        sync.Mutex
	users     map[primitive.ObjectID]*models.User
	incErr    error
	creditErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *memUserRepo) add(user *models.User) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return user.ID
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	// Store a copy so callers mutating their struct afterwards don't
	// alter stored state, matching a real database insert.
	stored := *user
	r.users[stored.ID] = &stored
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copy := *u
	return &copy, nil
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) IncrementWalletBalance(_ context.Context, id primitive.ObjectID, delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incErr != nil {
		return r.incErr
	}
	if delta > 0 && r.creditErr != nil {
		return r.creditErr
	}
	if u, ok := r.users[id]; ok {
		u.WalletBalance += delta
	}
	return nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memUserRepo) balance(id primitive.ObjectID) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].WalletBalance
}

// ---- in-memory transaction repository ----

type memTxnRepo struct {
	mu            sync.Mutex
	txns          map[primitive.ObjectID]*models.Transaction
	statusUpdates map[primitive.ObjectID]int
	updateErr     error
}

func newMemTxnRepo() *memTxnRepo {
	return &memTxnRepo{
		txns:          make(map[primitive.ObjectID]*models.Transaction),
		statusUpdates: make(map[primitive.ObjectID]int),
	}
}

func (r *memTxnRepo) Create(_ context.Context, txn *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn.ID = primitive.NewObjectID()
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = time.Now()
	stored := *txn
	r.txns[txn.ID] = &stored
	return nil
}

func (r *memTxnRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copy := *txn
	return &copy, nil
}

func (r *memTxnRepo) FindByReference(_ context.Context, reference string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, txn := range r.txns {
		if txn.Reference == reference {
			copy := *txn
			return &copy, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memTxnRepo) FindByUserID(_ context.Context, userID primitive.ObjectID, _, _ int) ([]*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Transaction
	for _, txn := range r.txns {
		if txn.UserID == userID {
			copy := *txn
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *memTxnRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status string, metadata map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	txn, ok := r.txns[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	txn.Status = status
	if txn.Metadata == nil {
		txn.Metadata = make(map[string]interface{})
	}
	for k, v := range metadata {
		txn.Metadata[k] = v
	}
	r.statusUpdates[id]++
	return nil
}

func (r *memTxnRepo) UpdatePurchaseState(_ context.Context, id primitive.ObjectID, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn, ok := r.txns[id]; ok {
		txn.PurchaseState = state
	}
	return nil
}

func (r *memTxnRepo) CountByTypeAndStatus(_ context.Context, userID primitive.ObjectID, txnType, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, txn := range r.txns {
		if txn.UserID == userID && txn.Type == txnType && txn.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memTxnRepo) CountSince(_ context.Context, userID primitive.ObjectID, txnType string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, txn := range r.txns {
		if txn.UserID == userID && txn.Type == txnType && !txn.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *memTxnRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.txns)), nil
}

func (r *memTxnRepo) updates(id primitive.ObjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusUpdates[id]
}

func (r *memTxnRepo) single(userID primitive.ObjectID) *models.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, txn := range r.txns {
		if txn.UserID == userID {
			copy := *txn
			return &copy
		}
	}
	return nil
}

// ---- in-memory inbox repository ----

type memInboxRepo struct {
	mu        sync.Mutex
	messages  []*models.InboxMessage
	createErr error
}

func newMemInboxRepo() *memInboxRepo {
	return &memInboxRepo{}
}

func (r *memInboxRepo) Create(_ context.Context, msg *models.InboxMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	stored := *msg
	r.messages = append(r.messages, &stored)
	return nil
}

func (r *memInboxRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.InboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			copy := *m
			return &copy, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memInboxRepo) FindByUserID(_ context.Context, userID primitive.ObjectID, _, _ int) ([]*models.InboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.InboxMessage
	for _, m := range r.messages {
		if m.UserID == userID {
			copy := *m
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *memInboxRepo) MarkRead(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id && m.UserID == userID {
			m.IsRead = true
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *memInboxRepo) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.UserID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *memInboxRepo) CountUnreadByType(_ context.Context, userID primitive.ObjectID, msgType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.UserID == userID && !m.IsRead && m.Type == msgType {
			n++
		}
	}
	return n, nil
}

func (r *memInboxRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.messages)), nil
}

func (r *memInboxRepo) forUser(userID primitive.ObjectID) []*models.InboxMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.InboxMessage
	for _, m := range r.messages {
		if m.UserID == userID {
			copy := *m
			out = append(out, &copy)
		}
	}
	return out
}

// ---- in-memory SMS order repository ----

type memSMSOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.SMSOrder
}

func newMemSMSOrderRepo() *memSMSOrderRepo {
	return &memSMSOrderRepo{orders: make(map[string]*models.SMSOrder)}
}

func (r *memSMSOrderRepo) Create(_ context.Context, order *models.SMSOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.ID = primitive.NewObjectID()
	stored := *order
	r.orders[order.OrderID] = &stored
	return nil
}

func (r *memSMSOrderRepo) FindByOrderID(_ context.Context, orderID string) (*models.SMSOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copy := *order
	return &copy, nil
}

func (r *memSMSOrderRepo) FindByUserID(_ context.Context, userID primitive.ObjectID, _, _ int) ([]*models.SMSOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SMSOrder
	for _, order := range r.orders {
		if order.UserID == userID {
			copy := *order
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *memSMSOrderRepo) UpdateStatus(_ context.Context, orderID, status, code string, attempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	order.Status = status
	order.Attempts = attempts
	if code != "" {
		order.Code = code
	}
	return nil
}

func (r *memSMSOrderRepo) status(orderID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.orders[orderID]; ok {
		return order.Status
	}
	return ""
}
