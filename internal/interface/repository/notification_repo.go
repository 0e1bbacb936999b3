package repository

import (
	"context"
	"fmt"
	"time"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNotificationRepository implements the NotificationRepository interface
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoDB notification repository
func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	collection := db.Collection("notifications")

	// Create indexes for better performance
	ctx := context.Background()

	recipientIndex := mongo.IndexModel{
		Keys: bson.M{"recipientId": 1},
	}

	// Compound index for unread counts and inbox listing
	unreadIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "recipientId", Value: 1},
			{Key: "isRead", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		recipientIndex,
		unreadIndex,
	})

	return &MongoNotificationRepository{
		collection: collection,
	}
}

// Insert saves a notification and returns its id
func (r *MongoNotificationRepository) Insert(ctx context.Context, notification *entity.Notification) (string, error) {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, notification)
	if err != nil {
		return "", err
	}
	return notification.ID, nil
}

// FindByRecipient lists a recipient's notifications, newest first
func (r *MongoNotificationRepository) FindByRecipient(ctx context.Context, recipientID string, limit int64) ([]*entity.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"recipientId": recipientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []*entity.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}

	return notifications, nil
}

// CountUnread returns the number of unread notifications for a recipient
func (r *MongoNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"recipientId": recipientID,
		"isRead":      false,
	})
}

// MarkRead marks a single notification as read
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id string) error {
	update := bson.M{
		"$set": bson.M{
			"isRead": true,
			"readAt": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, entity.ErrNotFound)
	}

	return nil
}

// MarkAllRead marks every unread notification of a recipient as read
func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	update := bson.M{
		"$set": bson.M{
			"isRead": true,
			"readAt": time.Now(),
		},
	}

	_, err := r.collection.UpdateMany(ctx, bson.M{
		"recipientId": recipientID,
		"isRead":      false,
	}, update)

	return err
}

// Delete removes one notification
func (r *MongoNotificationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

// DeleteAllForRecipient removes every notification of a recipient
func (r *MongoNotificationRepository) DeleteAllForRecipient(ctx context.Context, recipientID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"recipientId": recipientID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
