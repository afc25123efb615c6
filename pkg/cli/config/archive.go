package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/deckmuse/deckmuse/pkg/service/archive"
)

// Archive holds CLI flags for advice document archiving
type Archive struct {
	bucket string
}

// Flags returns CLI flags for archive configuration
func (x *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket for archiving advice documents (disabled when empty)",
			Category:    "Archive",
			Sources:     cli.EnvVars("DECKMUSE_ARCHIVE_BUCKET"),
			Destination: &x.bucket,
		},
	}
}

func (x Archive) LogValue() slog.Value {
	return slog.GroupValue(slog.String("bucket", x.bucket))
}

// Configure creates the archive service. Returns nil when no bucket is
// configured; archiving is optional.
func (x *Archive) Configure(ctx context.Context) (archive.Service, error) {
	if x.bucket == "" {
		return nil, nil
	}

	svc, err := archive.New(ctx, x.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create archive service")
	}
	return svc, nil
}
