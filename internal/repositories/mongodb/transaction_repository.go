package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vtuhub/vtuhub-backend/internal/models"
	"github.com/vtuhub/vtuhub-backend/internal/repositories"
)

// TransactionRepository implements the repositories.TransactionRepository interface
type TransactionRepository struct {
	collection *mongo.Collection
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *mongo.Database) repositories.TransactionRepository {
	return &TransactionRepository{
		collection: db.Collection("transactions"),
	}
}

// Create creates a new transaction
func (r *TransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, txn)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		txn.ID = oid
	}
	return nil
}

// FindByID finds a transaction by ID
func (r *TransactionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&txn)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// FindByReference finds a transaction by its reference string
func (r *TransactionRepository) FindByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"reference": reference}).Decode(&txn)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// FindByUserID finds transactions by user with pagination
func (r *TransactionRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Transaction, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txns []*models.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// UpdateStatus flips the transaction status and merges metadata keys.
// Merging keeps keys written at creation time intact.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, metadata map[string]interface{}) error {
	set := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	for k, v := range metadata {
		set["metadata."+k] = v
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// UpdatePurchaseState records the saga state of a purchase transaction
func (r *TransactionRepository) UpdatePurchaseState(ctx context.Context, id primitive.ObjectID, state string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"purchaseState": state, "updatedAt": time.Now()},
	})
	return err
}

// CountByTypeAndStatus counts a user's transactions of a type and status
func (r *TransactionRepository) CountByTypeAndStatus(ctx context.Context, userID primitive.ObjectID, txnType, status string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"userId": userID,
		"type":   txnType,
		"status": status,
	})
}

// CountSince counts a user's transactions of a type created after since
func (r *TransactionRepository) CountSince(ctx context.Context, userID primitive.ObjectID, txnType string, since time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"userId":    userID,
		"type":      txnType,
		"createdAt": bson.M{"$gte": since},
	})
}

// Count counts all transactions
func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
