package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/domain/types"
)

type jobDoc struct {
	ID             string    `firestore:"ID"`
	Status         string    `firestore:"Status"`
	Decklist       string    `firestore:"Decklist"`
	Format         string    `firestore:"Format"`
	AdditionalInfo string    `firestore:"AdditionalInfo"`
	Progress       []string  `firestore:"Progress"`
	Advice         string    `firestore:"Advice"`
	Error          string    `firestore:"Error"`
	CreatedAt      time.Time `firestore:"CreatedAt"`
	UpdatedAt      time.Time `firestore:"UpdatedAt"`
}

func toJobDoc(j *model.Job) *jobDoc {
	return &jobDoc{
		ID:             string(j.ID),
		Status:         string(j.Status),
		Decklist:       j.Request.Decklist,
		Format:         j.Request.Format,
		AdditionalInfo: j.Request.AdditionalInfo,
		Progress:       j.Progress,
		Advice:         j.Advice,
		Error:          j.Error,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func fromJobDoc(d *jobDoc) *model.Job {
	return &model.Job{
		ID:     model.JobID(d.ID),
		Status: model.JobStatus(d.Status),
		Request: model.AdviceRequest{
			Decklist:       d.Decklist,
			Format:         d.Format,
			AdditionalInfo: d.AdditionalInfo,
		},
		Progress:  d.Progress,
		Advice:    d.Advice,
		Error:     d.Error,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type jobRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newJobRepository(client *firestore.Client) *jobRepository {
	return &jobRepository{
		client: client,
	}
}

func (r *jobRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "jobs")
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	if job.ID == "" {
		job.ID = model.NewJobID()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	if _, err := r.collection().Doc(string(job.ID)).Set(ctx, toJobDoc(job)); err != nil {
		return goerr.Wrap(err, "failed to create job", goerr.V("jobID", job.ID))
	}
	return nil
}

func (r *jobRepository) Get(ctx context.Context, id model.JobID) (*model.Job, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrJobNotFound, "job not found", goerr.V("jobID", id))
		}
		return nil, goerr.Wrap(err, "failed to get job", goerr.V("jobID", id))
	}

	var d jobDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode job document", goerr.V("jobID", id))
	}
	return fromJobDoc(&d), nil
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	job.UpdatedAt = time.Now().UTC()
	if _, err := r.collection().Doc(string(job.ID)).Set(ctx, toJobDoc(job)); err != nil {
		return goerr.Wrap(err, "failed to update job", goerr.V("jobID", job.ID))
	}
	return nil
}
