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

// InboxRepository implements the repositories.InboxRepository interface
type InboxRepository struct {
	collection *mongo.Collection
}

// NewInboxRepository creates a new InboxRepository
func NewInboxRepository(db *mongo.Database) repositories.InboxRepository {
	return &InboxRepository{
		collection: db.Collection("inbox_messages"),
	}
}

// Create creates a new inbox message
func (r *InboxRepository) Create(ctx context.Context, msg *models.InboxMessage) error {
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid
	}
	return nil
}

// FindByID finds an inbox message by ID
func (r *InboxRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.InboxMessage, error) {
	var msg models.InboxMessage
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindByUserID finds inbox messages by user with pagination
func (r *InboxRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.InboxMessage, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []*models.InboxMessage
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRead marks a message as read. Scoped to the owning user so one user
// cannot flip another user's messages.
func (r *InboxRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CountUnread counts a user's unread messages
func (r *InboxRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID, "isRead": false})
}

// CountUnreadByType counts a user's unread messages of one type
func (r *InboxRepository) CountUnreadByType(ctx context.Context, userID primitive.ObjectID, msgType string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID, "isRead": false, "type": msgType})
}

// Count counts all inbox messages
func (r *InboxRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
