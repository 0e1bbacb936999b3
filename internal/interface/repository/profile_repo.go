package repository

import (
	"context"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStylistRepository implements the StylistRepository interface
type MongoStylistRepository struct {
	collection *mongo.Collection
}

// NewMongoStylistRepository creates a new MongoDB stylist repository
func NewMongoStylistRepository(db *mongo.Database) repository.StylistRepository {
	return &MongoStylistRepository{
		collection: db.Collection("stylists"),
	}
}

// GetByID finds a stylist profile by id
func (r *MongoStylistRepository) GetByID(ctx context.Context, id string) (*entity.Stylist, error) {
	var stylist entity.Stylist
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&stylist)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return &stylist, nil
}

// MongoServiceRepository implements the ServiceRepository interface
type MongoServiceRepository struct {
	collection *mongo.Collection
}

// NewMongoServiceRepository creates a new MongoDB service catalog repository
func NewMongoServiceRepository(db *mongo.Database) repository.ServiceRepository {
	return &MongoServiceRepository{
		collection: db.Collection("services"),
	}
}

// GetByID finds a catalog service by id
func (r *MongoServiceRepository) GetByID(ctx context.Context, id string) (*entity.SalonService, error) {
	var service entity.SalonService
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&service)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return &service, nil
}

// MongoClientRepository implements the ClientRepository interface
type MongoClientRepository struct {
	collection *mongo.Collection
}

// NewMongoClientRepository creates a new MongoDB client profile repository
func NewMongoClientRepository(db *mongo.Database) repository.ClientRepository {
	return &MongoClientRepository{
		collection: db.Collection("clients"),
	}
}

// GetByID finds a client profile by id
func (r *MongoClientRepository) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	var client entity.Client
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&client)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}
