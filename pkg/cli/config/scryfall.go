package config

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
	"github.com/deckmuse/deckmuse/pkg/service/scryfall"
)

// Scryfall holds CLI flags for the card search service
type Scryfall struct {
	baseURL          string
	docsURL          string
	maxCardsPerQuery int
	requestDelay     time.Duration
}

// Flags returns CLI flags for Scryfall configuration
func (x *Scryfall) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "scryfall-base-url",
			Usage:       "Scryfall API base URL",
			Category:    "Scryfall",
			Value:       "https://api.scryfall.com",
			Sources:     cli.EnvVars("DECKMUSE_SCRYFALL_BASE_URL"),
			Destination: &x.baseURL,
		},
		&cli.StringFlag{
			Name:        "scryfall-docs-url",
			Usage:       "Scryfall search syntax documentation URL",
			Category:    "Scryfall",
			Value:       "https://scryfall.com/docs/syntax",
			Sources:     cli.EnvVars("DECKMUSE_SCRYFALL_DOCS_URL"),
			Destination: &x.docsURL,
		},
		&cli.IntFlag{
			Name:        "scryfall-max-cards-per-query",
			Usage:       "Maximum cards a single search query may return",
			Category:    "Scryfall",
			Value:       100,
			Sources:     cli.EnvVars("DECKMUSE_SCRYFALL_MAX_CARDS_PER_QUERY"),
			Destination: &x.maxCardsPerQuery,
		},
		&cli.DurationFlag{
			Name:        "scryfall-request-delay",
			Usage:       "Pause after each card lookup request",
			Category:    "Scryfall",
			Value:       100 * time.Millisecond,
			Sources:     cli.EnvVars("DECKMUSE_SCRYFALL_REQUEST_DELAY"),
			Destination: &x.requestDelay,
		},
	}
}

func (x Scryfall) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", x.baseURL),
		slog.Int("max_cards_per_query", x.maxCardsPerQuery),
		slog.Duration("request_delay", x.requestDelay),
	)
}

// MaxCardsPerQuery returns the configured per-query result cap. The query
// planner needs the same number the search client enforces.
func (x *Scryfall) MaxCardsPerQuery() int {
	return x.maxCardsPerQuery
}

// Configure creates the card search client
func (x *Scryfall) Configure() interfaces.CardSearcher {
	return scryfall.New(
		scryfall.WithBaseURL(x.baseURL),
		scryfall.WithDocsURL(x.docsURL),
		scryfall.WithMaxCardsPerQuery(x.maxCardsPerQuery),
		scryfall.WithRequestDelay(x.requestDelay),
	)
}
