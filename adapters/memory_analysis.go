package adapters

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/satriahrh/cerita/server/domain/entities"
	"github.com/satriahrh/cerita/server/domain/repositories"
)

// MemoryAnalysisRepository is an in-memory implementation of
// AnalysisRepository, used for development and tests where no MongoDB
// instance is available.
type MemoryAnalysisRepository struct {
	records map[primitive.ObjectID]*entities.AnalysisRecord
	mu      sync.RWMutex
}

// Ensure MemoryAnalysisRepository implements the AnalysisRepository interface
var _ repositories.AnalysisRepository = (*MemoryAnalysisRepository)(nil)

// NewMemoryAnalysisRepository creates a new in-memory analysis repository
func NewMemoryAnalysisRepository() *MemoryAnalysisRepository {
	return &MemoryAnalysisRepository{
		records: make(map[primitive.ObjectID]*entities.AnalysisRecord),
	}
}

// Create stores a new analysis record
func (r *MemoryAnalysisRepository) Create(ctx context.Context, record *entities.AnalysisRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}

	stored := *record
	r.records[record.ID] = &stored
	return nil
}

// GetByID retrieves an analysis record by its ID
func (r *MemoryAnalysisRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entities.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, ErrAnalysisNotFound
	}

	found := *record
	return &found, nil
}

// ListByClientID retrieves a client's analysis history, newest first
func (r *MemoryAnalysisRepository) ListByClientID(ctx context.Context, clientID string, limit int) ([]*entities.AnalysisRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*entities.AnalysisRecord
	for _, record := range r.records {
		if record.ClientID == clientID {
			found := *record
			records = append(records, &found)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// Update replaces a stored record
func (r *MemoryAnalysisRepository) Update(ctx context.Context, record *entities.AnalysisRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.ID]; !ok {
		return ErrAnalysisNotFound
	}

	record.UpdatedAt = time.Now()
	stored := *record
	r.records[record.ID] = &stored
	return nil
}

// Delete removes an analysis record
func (r *MemoryAnalysisRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return ErrAnalysisNotFound
	}

	delete(r.records, id)
	return nil
}
