package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/utils/async"
	"github.com/deckmuse/deckmuse/pkg/utils/logging"
)

// JobUseCase runs advice pipelines as background jobs for the polling UI
type JobUseCase struct {
	repo     interfaces.Repository
	pipeline *UseCases
}

// NewJobUseCase creates a new JobUseCase
func NewJobUseCase(repo interfaces.Repository, pipeline *UseCases) *JobUseCase {
	return &JobUseCase{
		repo:     repo,
		pipeline: pipeline,
	}
}

// Start creates a job and runs the pipeline in the background. Progress
// messages are persisted on the job record so pollers can display them.
func (j *JobUseCase) Start(ctx context.Context, req *model.AdviceRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job := &model.Job{
		Status:  model.JobStatusRunning,
		Request: *req,
	}
	if err := j.repo.Job().Create(ctx, job); err != nil {
		return nil, goerr.Wrap(err, "failed to create advice job")
	}

	async.Dispatch(ctx, func(bgCtx context.Context) error {
		j.run(bgCtx, job)
		return nil
	})

	return job, nil
}

// run executes the pipeline for one job. It owns the job record: the sink
// and the final status write both go through the single pipeline goroutine,
// so no locking is needed.
func (j *JobUseCase) run(ctx context.Context, job *model.Job) {
	logger := logging.From(ctx)

	sink := interfaces.ProgressFunc(func(msg string, replace bool) {
		if replace && len(job.Progress) > 0 {
			job.Progress[len(job.Progress)-1] = msg
		} else {
			job.Progress = append(job.Progress, msg)
		}
		if err := j.repo.Job().Update(ctx, job); err != nil {
			logger.Error("failed to persist job progress", "jobID", job.ID, "error", err.Error())
		}
	})

	advice, err := j.pipeline.GetDeckAdvice(ctx, &job.Request, sink)
	if err != nil {
		logger.Error("advice job failed", "jobID", job.ID, "error", err.Error())
		job.Status = model.JobStatusFailed
		job.Error = err.Error()
	} else {
		job.Status = model.JobStatusCompleted
		job.Advice = advice.Text
	}

	if err := j.repo.Job().Update(ctx, job); err != nil {
		logger.Error("failed to persist job result", "jobID", job.ID, "error", err.Error())
	}
}

// Get returns the current state of a job
func (j *JobUseCase) Get(ctx context.Context, id model.JobID) (*model.Job, error) {
	return j.repo.Job().Get(ctx, id)
}
