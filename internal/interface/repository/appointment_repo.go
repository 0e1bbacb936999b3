package repository

import (
	"context"
	"fmt"
	"sync"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"
	"salonsync-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAppointmentRepository implements the AppointmentRepository interface
type MongoAppointmentRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

// NewMongoAppointmentRepository creates a new MongoDB appointment repository
func NewMongoAppointmentRepository(db *mongo.Database, logger logger.Logger) repository.AppointmentRepository {
	collection := db.Collection("appointments")

	// Create indexes for better performance
	ctx := context.Background()

	clientIndex := mongo.IndexModel{
		Keys: bson.M{"clientId": 1},
	}

	stylistIndex := mongo.IndexModel{
		Keys: bson.M{"stylistId": 1},
	}

	// Membership lookups into the pairs array
	pairStylistIndex := mongo.IndexModel{
		Keys: bson.M{"serviceStylistPairs.stylistId": 1},
	}

	// Compound index matching the caller-facing sort order
	dateTimeIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "date", Value: -1},
			{Key: "time", Value: -1},
		},
	}

	// Create all indexes
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		clientIndex,
		stylistIndex,
		pairStylistIndex,
		dateTimeIndex,
	})

	return &MongoAppointmentRepository{
		collection: collection,
		logger:     logger,
	}
}

// filterToBson converts one generic filter condition to its MongoDB form.
// Equality and array membership share the same syntax: matching a scalar
// value against an array field matches any element.
func filterToBson(filters []repository.Filter) bson.M {
	query := bson.M{}
	for _, f := range filters {
		query[f.Field] = f.Value
	}
	return query
}

// Query runs one filtered read against the appointment collection
func (r *MongoAppointmentRepository) Query(ctx context.Context, filters []repository.Filter, orderBy string, descending bool, limit int64) ([]*entity.AppointmentDocument, error) {
	opts := options.Find()
	if orderBy != "" {
		direction := 1
		if descending {
			direction = -1
		}
		opts.SetSort(bson.D{{Key: orderBy, Value: direction}})
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filterToBson(filters), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*entity.AppointmentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return docs, nil
}

// GetByID finds an appointment document by id
func (r *MongoAppointmentRepository) GetByID(ctx context.Context, id string) (*entity.AppointmentDocument, error) {
	var doc entity.AppointmentDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// ScanAll reads the whole collection. Used only by the legacy fallback path.
func (r *MongoAppointmentRepository) ScanAll(ctx context.Context) ([]*entity.AppointmentDocument, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*entity.AppointmentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return docs, nil
}

// Insert saves a new appointment document
func (r *MongoAppointmentRepository) Insert(ctx context.Context, doc *entity.AppointmentDocument) error {
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

// Update applies a field patch to an existing appointment
func (r *MongoAppointmentRepository) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	update := bson.M{"$set": bson.M(patch)}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("appointment %s: %w", id, entity.ErrNotFound)
	}

	return nil
}

// AppendHistory pushes one entry onto the append-only history log
func (r *MongoAppointmentRepository) AppendHistory(ctx context.Context, id string, entry entity.HistoryEntry) error {
	update := bson.M{"$push": bson.M{"history": entry}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("appointment %s: %w", id, entity.ErrNotFound)
	}

	return nil
}

// Delete removes an appointment document
func (r *MongoAppointmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("appointment %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

// Watch opens a change stream for documents matching the filter and adapts
// it to the ChangeSubscription contract. Change events are coalesced: a
// signal already pending absorbs later ones until the consumer drains it.
func (r *MongoAppointmentRepository) Watch(ctx context.Context, filter repository.Filter) (repository.ChangeSubscription, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"fullDocument." + filter.Field: filter.Value,
		}}},
	}

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := r.collection.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream: %w", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	sub := &mongoChangeSubscription{
		stream:  stream,
		cancel:  cancel,
		changes: make(chan struct{}, 1),
	}

	go sub.pump(streamCtx, r.logger)

	return sub, nil
}

type mongoChangeSubscription struct {
	stream  *mongo.ChangeStream
	cancel  context.CancelFunc
	changes chan struct{}

	mu        sync.Mutex
	err       error
	closeOnce sync.Once
}

func (s *mongoChangeSubscription) pump(ctx context.Context, log logger.Logger) {
	defer close(s.changes)

	for s.stream.Next(ctx) {
		select {
		case s.changes <- struct{}{}:
		default:
			// A signal is already pending, coalesce
		}
	}

	if err := s.stream.Err(); err != nil && ctx.Err() == nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		log.Error("Change stream terminated", "error", err)
	}
}

func (s *mongoChangeSubscription) Changes() <-chan struct{} {
	return s.changes
}

func (s *mongoChangeSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *mongoChangeSubscription) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		err = s.stream.Close(ctx)
	})
	return err
}
