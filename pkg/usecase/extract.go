package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/deckmuse/deckmuse/pkg/domain/types"
	"github.com/deckmuse/deckmuse/pkg/utils/logging"
)

// ExtractNames converts raw decklist text into an ordered list of card
// names. Quantities, set codes and section labels are stripped by the cheap
// model; order is preserved and duplicates are kept.
func (uc *UseCases) ExtractNames(ctx context.Context, decklist string) ([]string, error) {
	logger := logging.From(ctx)
	logger.Info("extracting card names from decklist")

	response, err := uc.generator.Generate(ctx, types.TierCheap, extractSystemPrompt, decklist)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract card names")
	}

	var names []string
	for _, line := range strings.Split(response, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}

	logger.Debug("extracted card names", "count", len(names))
	return names, nil
}
