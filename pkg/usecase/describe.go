package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/domain/types"
	"github.com/deckmuse/deckmuse/pkg/utils/logging"
)

// lookupResult is the tagged outcome of one card lookup. Per-item failures
// are carried as values across the fan-in boundary, never as errors.
type lookupResult struct {
	name string
	text string
	err  error
}

// placeholderDescription marks a card whose lookup failed. Downstream stages
// still reference the card; the marker makes the failure visible in the
// final prompt instead of silently dropping the card.
func placeholderDescription(name string) string {
	return fmt.Sprintf("%s - ERROR GETTING DESCRIPTION", name)
}

// ResolveDescriptions returns a description for every requested card name.
// Cached descriptions come from the store in one bulk read; misses are
// fetched concurrently from the card search service and written back in one
// bulk insert. The returned map covers every input name: lookup failures get
// a visible placeholder. Only a store bulk-read failure is returned as an
// error.
func (uc *UseCases) ResolveDescriptions(ctx context.Context, names []string) (map[string]string, error) {
	logger := logging.From(ctx)
	logger.Info("resolving card descriptions", "cards", len(names))

	unique := dedupeNames(names)

	descriptions := make(map[string]string, len(unique))
	if len(unique) == 0 {
		return descriptions, nil
	}

	found, err := uc.repo.Description().BulkGet(ctx, unique)
	if err != nil {
		if !errors.Is(err, types.ErrStore) {
			// Join keeps the live error chain intact while tagging the
			// store sentinel onto it
			err = goerr.Wrap(errors.Join(types.ErrStore, err), "description store bulk read failed")
		}
		return nil, err
	}

	var missing []string
	for _, name := range unique {
		if desc, exists := found[name]; exists {
			descriptions[name] = desc
		} else {
			missing = append(missing, name)
		}
	}

	logger.Debug("description cache result", "hit", len(found), "miss", len(missing))
	if len(missing) == 0 {
		return descriptions, nil
	}

	results := make([]lookupResult, len(missing))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(lookupConcurrency)
	for i, name := range missing {
		eg.Go(func() error {
			text, err := uc.searcher.Lookup(egCtx, name)
			results[i] = lookupResult{name: name, text: text, err: err}
			return nil
		})
	}
	// Workers never return an error; the group is only used for the join
	_ = eg.Wait()

	var records []*model.DescriptionRecord
	for _, r := range results {
		if r.err != nil {
			logger.Error("card lookup failed", "name", r.name, "error", r.err.Error())
			descriptions[r.name] = placeholderDescription(r.name)
			continue
		}
		descriptions[r.name] = r.text
		records = append(records, &model.DescriptionRecord{
			Name:        r.name,
			Description: r.text,
		})
	}

	// Write-back is best-effort: the in-memory result stands even when the
	// store rejects the insert.
	if len(records) > 0 {
		if err := uc.repo.Description().BulkPut(ctx, records); err != nil {
			logger.Error("description write-back failed", "records", len(records), "error", err.Error())
		}
	}

	return descriptions, nil
}

func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		unique = append(unique, name)
	}
	return unique
}
