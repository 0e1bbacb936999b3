package repository

import (
	"context"
	"time"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPushTokenRepository implements the PushTokenRepository interface
type MongoPushTokenRepository struct {
	collection *mongo.Collection
}

// NewMongoPushTokenRepository creates a new MongoDB push token repository
func NewMongoPushTokenRepository(db *mongo.Database) repository.PushTokenRepository {
	collection := db.Collection("pushTokens")

	ctx := context.Background()

	tokenIndex := mongo.IndexModel{
		Keys:    bson.M{"token": 1},
		Options: options.Index().SetUnique(true),
	}

	userIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "active", Value: 1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		tokenIndex,
		userIndex,
	})

	return &MongoPushTokenRepository{
		collection: collection,
	}
}

// FindActiveByUser returns all active device tokens registered for a user
func (r *MongoPushTokenRepository) FindActiveByUser(ctx context.Context, userID string) ([]*entity.PushToken, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"userId": userID,
		"active": true,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tokens []*entity.PushToken
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, err
	}

	return tokens, nil
}

// Save upserts a token by its device address
func (r *MongoPushTokenRepository) Save(ctx context.Context, token *entity.PushToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	now := time.Now()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = now
	}
	token.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"userId":    token.UserID,
			"platform":  token.Platform,
			"deviceId":  token.DeviceID,
			"active":    token.Active,
			"updatedAt": token.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":       token.ID,
			"createdAt": token.CreatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"token": token.Token}, update, opts)
	return err
}

// Deactivate marks a device token as inactive, e.g. after the gateway
// reports it unregistered
func (r *MongoPushTokenRepository) Deactivate(ctx context.Context, token string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"token": token}, bson.M{
		"$set": bson.M{
			"active":    false,
			"updatedAt": time.Now(),
		},
	})
	return err
}
