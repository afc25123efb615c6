package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for the advice pipeline. Stage-fatal errors (generation,
// store) propagate to the caller; per-item errors (lookup, search, score) are
// degraded into the batch result by the use cases and never escape a stage.
var (
	// ErrGeneration indicates the text generation service failed or returned
	// content that does not satisfy its structural contract.
	ErrGeneration = goerr.New("text generation failed")

	// ErrCardNotFound indicates the card search service has no card matching
	// the requested name or query.
	ErrCardNotFound = goerr.New("card not found")

	// ErrStore indicates the description store is unreachable.
	ErrStore = goerr.New("description store unavailable")

	// ErrJobNotFound indicates an unknown advice job ID.
	ErrJobNotFound = goerr.New("advice job not found")
)
