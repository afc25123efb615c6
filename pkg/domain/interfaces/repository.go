package interfaces

import (
	"context"

	"github.com/deckmuse/deckmuse/pkg/domain/model"
)

// Repository bundles the persistence backends
type Repository interface {
	Description() DescriptionRepository
	Job() JobRepository
	Close() error
}

// DescriptionRepository is the cache of resolved card descriptions
type DescriptionRepository interface {
	// BulkGet returns the stored descriptions for the given names. Names
	// without a record are simply absent from the result map.
	BulkGet(ctx context.Context, names []string) (map[string]string, error)

	// BulkPut stores the given records. Duplicate names may accumulate;
	// readers take the first match.
	BulkPut(ctx context.Context, records []*model.DescriptionRecord) error
}

// JobRepository stores background advice jobs
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error

	// Get returns types.ErrJobNotFound when no job exists for the ID
	Get(ctx context.Context, id model.JobID) (*model.Job, error)

	Update(ctx context.Context, job *model.Job) error
}
