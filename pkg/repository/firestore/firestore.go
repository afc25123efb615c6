package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
)

// Client is the Firestore-backed repository
type Client struct {
	client      *firestore.Client
	description *descriptionRepository
	job         *jobRepository
}

var _ interfaces.Repository = &Client{}

type Option func(*Client)

// WithCollectionPrefix prefixes all collection names. Used to isolate test
// runs against a shared project.
func WithCollectionPrefix(prefix string) Option {
	return func(c *Client) {
		c.description.collectionPrefix = prefix
		c.job.collectionPrefix = prefix
	}
}

// New creates a new Firestore repository
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Client, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	c := &Client{
		client:      client,
		description: newDescriptionRepository(client),
		job:         newJobRepository(client),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) Description() interfaces.DescriptionRepository {
	return c.description
}

func (c *Client) Job() interfaces.JobRepository {
	return c.job
}

func (c *Client) Close() error {
	return c.client.Close()
}
