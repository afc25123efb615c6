package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/domain/types"
)

func runJobRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		job := &model.Job{
			Status:  model.JobStatusRunning,
			Request: model.AdviceRequest{Decklist: "4 Lightning Bolt"},
		}

		gt.NoError(t, repo.Job().Create(ctx, job)).Required()
		gt.String(t, job.ID.String()).NotEqual("")
		gt.Bool(t, job.CreatedAt.IsZero()).False()

		retrieved, err := repo.Job().Get(ctx, job.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Status).Equal(model.JobStatusRunning)
		gt.Value(t, retrieved.Request.Decklist).Equal("4 Lightning Bolt")
	})

	t.Run("Update persists progress and result", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		job := &model.Job{
			Status:  model.JobStatusRunning,
			Request: model.AdviceRequest{Decklist: "2 Baleful Strix", Format: "legacy"},
		}
		gt.NoError(t, repo.Job().Create(ctx, job)).Required()

		job.Progress = append(job.Progress, "Starting deck analysis...")
		job.Status = model.JobStatusCompleted
		job.Advice = "## Advice\nAdd more removal."
		gt.NoError(t, repo.Job().Update(ctx, job)).Required()

		retrieved, err := repo.Job().Get(ctx, job.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Status).Equal(model.JobStatusCompleted)
		gt.Array(t, retrieved.Progress).Length(1)
		gt.Value(t, retrieved.Advice).Equal("## Advice\nAdd more removal.")
	})

	t.Run("Get unknown ID returns ErrJobNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Job().Get(ctx, model.NewJobID())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrJobNotFound)).True()
	})
}
