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

// SMSOrderRepository implements the repositories.SMSOrderRepository interface
type SMSOrderRepository struct {
	collection *mongo.Collection
}

// NewSMSOrderRepository creates a new SMSOrderRepository
func NewSMSOrderRepository(db *mongo.Database) repositories.SMSOrderRepository {
	return &SMSOrderRepository{
		collection: db.Collection("sms_orders"),
	}
}

// Create creates a new SMS order
func (r *SMSOrderRepository) Create(ctx context.Context, order *models.SMSOrder) error {
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

// FindByOrderID finds an order by the provider order ID
func (r *SMSOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*models.SMSOrder, error) {
	var order models.SMSOrder
	err := r.collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByUserID finds orders by user with pagination
func (r *SMSOrderRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.SMSOrder, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*models.SMSOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus records the order status, code and attempts spent
func (r *SMSOrderRepository) UpdateStatus(ctx context.Context, orderID, status, code string, attempts int) error {
	set := bson.M{
		"status":    status,
		"attempts":  attempts,
		"updatedAt": time.Now(),
	}
	if code != "" {
		set["code"] = code
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"orderId": orderID}, bson.M{"$set": set})
	return err
}
