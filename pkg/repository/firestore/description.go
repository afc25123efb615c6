package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/domain/types"
)

// Firestore caps `in` filters at 30 values per query
const bulkGetChunkSize = 30

// descriptionDoc is the Firestore document representation of
// model.DescriptionRecord. Documents use auto-generated IDs: card names can
// contain characters that are invalid in document paths, and the store
// tolerates duplicate records for a name (readers take the first match).
type descriptionDoc struct {
	Name        string    `firestore:"Name"`
	Description string    `firestore:"Description"`
	CreatedAt   time.Time `firestore:"CreatedAt"`
}

type descriptionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newDescriptionRepository(client *firestore.Client) *descriptionRepository {
	return &descriptionRepository{
		client: client,
	}
}

func (r *descriptionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "descriptions")
}

func (r *descriptionRepository) BulkGet(ctx context.Context, names []string) (map[string]string, error) {
	found := make(map[string]string, len(names))

	for start := 0; start < len(names); start += bulkGetChunkSize {
		end := min(start+bulkGetChunkSize, len(names))
		chunk := names[start:end]

		iter := r.collection().Where("Name", "in", chunk).Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, goerr.Wrap(types.ErrStore, "failed to query descriptions",
					goerr.V("cause", err.Error()),
					goerr.V("chunkSize", len(chunk)),
				)
			}

			var d descriptionDoc
			if err := doc.DataTo(&d); err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to decode description document",
					goerr.V("docID", doc.Ref.ID),
				)
			}

			// First match wins on duplicate records
			if _, exists := found[d.Name]; !exists {
				found[d.Name] = d.Description
			}
		}
		iter.Stop()
	}

	return found, nil
}

func (r *descriptionRepository) BulkPut(ctx context.Context, records []*model.DescriptionRecord) error {
	if len(records) == 0 {
		return nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(records))

	now := time.Now().UTC()
	for _, rec := range records {
		createdAt := rec.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		job, err := bw.Create(r.collection().NewDoc(), &descriptionDoc{
			Name:        rec.Name,
			Description: rec.Description,
			CreatedAt:   createdAt,
		})
		if err != nil {
			bw.End()
			return goerr.Wrap(err, "failed to enqueue description write", goerr.V("name", rec.Name))
		}
		jobs = append(jobs, job)
	}

	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to write description", goerr.V("name", records[i].Name))
		}
	}

	return nil
}
