package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/domain/types"
)

type jobRepository struct {
	mu   sync.RWMutex
	jobs map[model.JobID]*model.Job
}

func newJobRepository() *jobRepository {
	return &jobRepository{
		jobs: make(map[model.JobID]*model.Job),
	}
}

func copyJob(j *model.Job) *model.Job {
	copied := *j
	copied.Progress = make([]string, len(j.Progress))
	copy(copied.Progress, j.Progress)
	return &copied
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job.ID == "" {
		job.ID = model.NewJobID()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	r.jobs[job.ID] = copyJob(job)
	return nil
}

func (r *jobRepository) Get(ctx context.Context, id model.JobID) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.jobs[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrJobNotFound, "job not found", goerr.V("jobID", id))
	}
	return copyJob(job), nil
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; !exists {
		return goerr.Wrap(types.ErrJobNotFound, "job not found", goerr.V("jobID", job.ID))
	}
	job.UpdatedAt = time.Now().UTC()
	r.jobs[job.ID] = copyJob(job)
	return nil
}
