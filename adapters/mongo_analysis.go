package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/satriahrh/cerita/server/domain/entities"
	"github.com/satriahrh/cerita/server/domain/repositories"
)

// ErrAnalysisNotFound is returned when no record matches the query.
var ErrAnalysisNotFound = errors.New("analysis not found")

const defaultHistoryLimit = 20

// MongoAnalysisRepository implements AnalysisRepository using MongoDB
type MongoAnalysisRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoAnalysisRepository creates a new MongoDB analysis repository
func NewMongoAnalysisRepository(db *mongo.Database, logger *zap.Logger) repositories.AnalysisRepository {
	collection := db.Collection("analyses")

	// Create indexes for better performance
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Index on client_id for history lookups
		clientIDIndex := mongo.IndexModel{
			Keys: bson.D{{Key: "client_id", Value: 1}},
		}

		// Compound index for history listing, newest first
		historyIndex := mongo.IndexModel{
			Keys: bson.D{
				{Key: "client_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		}

		_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
			clientIDIndex,
			historyIndex,
		})

		if err != nil {
			logger.Error("Failed to create analysis indexes", zap.Error(err))
		} else {
			logger.Info("Analysis indexes created successfully")
		}
	}()

	return &MongoAnalysisRepository{
		collection: collection,
		logger:     logger,
	}
}

// Create stores a new analysis record
func (r *MongoAnalysisRepository) Create(ctx context.Context, record *entities.AnalysisRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	_, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		r.logger.Error("Failed to create analysis record",
			zap.Error(err),
			zap.String("client_id", record.ClientID))
		return err
	}

	r.logger.Info("Analysis record created",
		zap.String("analysis_id", record.ID.Hex()),
		zap.String("client_id", record.ClientID))

	return nil
}

// GetByID retrieves an analysis record by its ID
func (r *MongoAnalysisRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entities.AnalysisRecord, error) {
	var record entities.AnalysisRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAnalysisNotFound
		}
		r.logger.Error("Failed to get analysis by ID",
			zap.Error(err),
			zap.String("analysis_id", id.Hex()))
		return nil, err
	}

	return &record, nil
}

// ListByClientID retrieves a client's analysis history, newest first
func (r *MongoAnalysisRepository) ListByClientID(ctx context.Context, clientID string, limit int) ([]*entities.AnalysisRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"client_id": clientID}, findOptions)
	if err != nil {
		r.logger.Error("Failed to list analyses",
			zap.Error(err),
			zap.String("client_id", clientID))
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*entities.AnalysisRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// Update replaces a stored record, used when translations are attached
func (r *MongoAnalysisRepository) Update(ctx context.Context, record *entities.AnalysisRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	record.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": record.ID}, record)
	if err != nil {
		r.logger.Error("Failed to update analysis record",
			zap.Error(err),
			zap.String("analysis_id", record.ID.Hex()))
		return err
	}

	if result.MatchedCount == 0 {
		return ErrAnalysisNotFound
	}

	return nil
}

// Delete removes an analysis record
func (r *MongoAnalysisRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete analysis record",
			zap.Error(err),
			zap.String("analysis_id", id.Hex()))
		return err
	}

	if result.DeletedCount == 0 {
		return ErrAnalysisNotFound
	}

	r.logger.Info("Analysis record deleted", zap.String("analysis_id", id.Hex()))
	return nil
}
