package interfaces

import (
	"context"

	"github.com/deckmuse/deckmuse/pkg/domain/model"
)

// CardSearcher is the external card resolution service.
type CardSearcher interface {
	// Lookup resolves a single card name (fuzzy match) to its description
	// text. Returns types.ErrCardNotFound when no card matches.
	Lookup(ctx context.Context, name string) (string, error)

	// Search executes a search query and returns matching cards, following
	// pagination until results are exhausted or the service's per-query cap
	// is reached. Returns an empty slice when nothing matches.
	Search(ctx context.Context, query string) ([]model.Card, error)

	// Formats returns the list of known format labels. The list is fetched
	// once and memoized; an empty list is returned when the fetch fails.
	Formats(ctx context.Context) []string

	// SyntaxReference returns the search syntax documentation used to steer
	// query generation. Empty string when unavailable.
	SyntaxReference(ctx context.Context) string
}
