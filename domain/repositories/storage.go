package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/satriahrh/cerita/server/domain/entities"
)

// AnalysisRepository defines data access methods for analysis records.
type AnalysisRepository interface {
	Create(ctx context.Context, record *entities.AnalysisRecord) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entities.AnalysisRecord, error)
	ListByClientID(ctx context.Context, clientID string, limit int) ([]*entities.AnalysisRecord, error)
	Update(ctx context.Context, record *entities.AnalysisRecord) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
