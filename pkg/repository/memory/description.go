package memory

import (
	"context"
	"sync"
	"time"

	"github.com/deckmuse/deckmuse/pkg/domain/model"
)

type descriptionRepository struct {
	mu      sync.RWMutex
	records map[string]*model.DescriptionRecord
}

func newDescriptionRepository() *descriptionRepository {
	return &descriptionRepository{
		records: make(map[string]*model.DescriptionRecord),
	}
}

func (r *descriptionRepository) BulkGet(ctx context.Context, names []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]string)
	for _, name := range names {
		if rec, exists := r.records[name]; exists {
			found[name] = rec.Description
		}
	}
	return found, nil
}

func (r *descriptionRepository) BulkPut(ctx context.Context, records []*model.DescriptionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, rec := range records {
		// First write wins: descriptions are treated as stable canonical
		// content, so a redundant insert is a no-op.
		if _, exists := r.records[rec.Name]; exists {
			continue
		}
		stored := *rec
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		r.records[rec.Name] = &stored
	}
	return nil
}
