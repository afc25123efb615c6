package types

import "github.com/m-mizutani/goerr/v2"

// ModelTier selects which generation model a prompt is sent to. The cheap
// tier handles mechanical tasks (name extraction, relevance scoring); the
// strong tier handles planning and the final advice document.
type ModelTier string

const (
	TierCheap  ModelTier = "cheap"
	TierStrong ModelTier = "strong"
)

// Validate checks if the ModelTier is valid
func (t ModelTier) Validate() error {
	switch t {
	case TierCheap, TierStrong:
		return nil
	default:
		return goerr.New("invalid model tier", goerr.V("tier", t))
	}
}

// String returns the string representation of ModelTier
func (t ModelTier) String() string {
	return string(t)
}
