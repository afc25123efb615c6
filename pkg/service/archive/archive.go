package archive

import (
	"context"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"

	"github.com/deckmuse/deckmuse/pkg/utils/logging"
)

// Service archives finished advice documents to a Cloud Storage bucket so
// past runs can be reviewed outside the job store's lifetime.
type Service interface {
	Store(ctx context.Context, id string, advice string) error
	Close() error
}

type client struct {
	gcs    *storage.Client
	bucket string
}

// New creates a new archive service writing to the given bucket
func New(ctx context.Context, bucket string) (Service, error) {
	if bucket == "" {
		return nil, goerr.New("archive bucket name is required")
	}

	gcs, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &client{
		gcs:    gcs,
		bucket: bucket,
	}, nil
}

func (c *client) Store(ctx context.Context, id string, advice string) error {
	objName := "advice/" + time.Now().UTC().Format("2006/01/02/") + id + ".md"

	w := c.gcs.Bucket(c.bucket).Object(objName).NewWriter(ctx)
	w.ContentType = "text/markdown"

	if _, err := w.Write([]byte(advice)); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write advice object",
			goerr.V("bucket", c.bucket),
			goerr.V("object", objName),
		)
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize advice object",
			goerr.V("bucket", c.bucket),
			goerr.V("object", objName),
		)
	}

	logging.From(ctx).Info("archived advice document", "bucket", c.bucket, "object", objName)
	return nil
}

func (c *client) Close() error {
	return c.gcs.Close()
}
