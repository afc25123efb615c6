package interfaces

import (
	"context"

	"github.com/deckmuse/deckmuse/pkg/domain/types"
)

// Generator is the external text generation service. Implementations route
// the call to the model configured for the given tier.
type Generator interface {
	// Generate sends a system instruction and a user prompt and returns the
	// generated text. Failures are wrapped with types.ErrGeneration.
	Generate(ctx context.Context, tier types.ModelTier, system, user string) (string, error)
}
