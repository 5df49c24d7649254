package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/circle/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationsCollection = "notifications"

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID uint, skip, limit int64) ([]models.Notification, int64, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkAsRead(ctx context.Context, id string, recipientID uint) error
	MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error)
}

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection(notificationsCollection)}
}

func (r *mongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	const op = "repositories/notifications/CreateNotification"

	notification.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *mongoNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uint, skip, limit int64) ([]models.Notification, int64, error) {
	const op = "repositories/notifications/GetByRecipientID"

	filter := bson.M{"recipient_id": recipientID}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	notifications := make([]models.Notification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return notifications, total, nil
}

func (r *mongoNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	const op = "repositories/notifications/GetUnreadCount"

	n, err := r.collection.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// MarkAsRead flips the read flag of a notification addressed to recipientID.
func (r *mongoNotificationRepository) MarkAsRead(ctx context.Context, id string, recipientID uint) error {
	const op = "repositories/notifications/MarkAsRead"

	objID, err := parseObjectID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (r *mongoNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error) {
	const op = "repositories/notifications/MarkAllAsRead"

	res, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.ModifiedCount, nil
}
