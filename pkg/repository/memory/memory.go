package memory

import (
	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
)

// Client is an in-memory repository for development and testing
type Client struct {
	description *descriptionRepository
	job         *jobRepository
}

var _ interfaces.Repository = &Client{}

// New creates a new in-memory repository
func New() *Client {
	return &Client{
		description: newDescriptionRepository(),
		job:         newJobRepository(),
	}
}

func (c *Client) Description() interfaces.DescriptionRepository {
	return c.description
}

func (c *Client) Job() interfaces.JobRepository {
	return c.job
}

func (c *Client) Close() error {
	return nil
}
