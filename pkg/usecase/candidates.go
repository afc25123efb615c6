package usecase

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/domain/types"
	"github.com/deckmuse/deckmuse/pkg/utils/logging"
)

// CandidateResult is the outcome of one candidate search: the strategy
// summary that drove it and the ranked candidate descriptions.
type CandidateResult struct {
	Strategy     string
	Descriptions []string
}

var (
	planPattern  = regexp.MustCompile(`(?s)<strategy>\s*(.+?)\s*</strategy>\s*<queries>\s*(.+?)\s*</queries>`)
	queryPattern = regexp.MustCompile(`<query>(.+)</query>`)
)

// parseCandidatePlan parses the strategy/queries response against its strict
// structural contract. Lines inside the queries block that are not query tags
// are ignored; a response without both sections is an error.
func parseCandidatePlan(response string) (*model.CandidatePlan, error) {
	m := planPattern.FindStringSubmatch(response)
	if m == nil {
		return nil, goerr.Wrap(types.ErrGeneration, "malformed strategy and queries response")
	}

	plan := &model.CandidatePlan{Strategy: m[1]}
	for _, line := range strings.Split(m[2], "\n") {
		if qm := queryPattern.FindStringSubmatch(strings.TrimSpace(line)); qm != nil {
			plan.Queries = append(plan.Queries, qm[1])
		}
	}

	if len(plan.Queries) == 0 {
		return nil, goerr.Wrap(types.ErrGeneration, "response contains no queries")
	}

	return plan, nil
}

// FindCandidates proposes additions for the deck described by deckContext.
// The strong model plans search queries, the queries run concurrently against
// the card search service, and the cheap model scores each candidate against
// the strategy summary. Cards already in the deck are never proposed. The
// result is capped at maxCandidates and cut at the first candidate scoring
// below minRelevanceScore in ranked order.
func (uc *UseCases) FindCandidates(ctx context.Context, deckContext string, existing []string, format string, sink interfaces.ProgressSink) (*CandidateResult, error) {
	logger := logging.From(ctx)
	logger.Info("finding potential additions")

	notify(sink, "Analyzing deck strategy to find potential additions...", false)

	plan, err := uc.generatePlan(ctx, deckContext)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		// Malformed plan degrades to no candidates rather than guessing
		return &CandidateResult{}, nil
	}

	queries := plan.Queries
	if format != "" {
		for i, q := range queries {
			queries[i] = q + " f:" + format
		}
	}

	notify(sink, fmt.Sprintf("Generated %d search queries for potential additions", len(queries)), false)
	notify(sink, "Searching for potential additions...", false)

	merged, order := uc.searchAll(ctx, queries)

	existingSet := make(map[string]bool, len(existing))
	for _, name := range existing {
		existingSet[name] = true
	}

	var names []string
	for _, name := range order {
		if !existingSet[name] {
			names = append(names, name)
		}
	}
	logger.Debug("candidate pool assembled", "merged", len(merged), "afterExclusion", len(names))

	descriptions, err := uc.ResolveDescriptions(ctx, names)
	if err != nil {
		return nil, err
	}

	notify(sink, fmt.Sprintf("Evaluating %d potential additions...", len(names)), false)

	scores := uc.scoreAll(ctx, plan.Strategy, names, descriptions, sink)

	return &CandidateResult{
		Strategy:     plan.Strategy,
		Descriptions: rankAndTruncate(names, scores, descriptions),
	}, nil
}

// generatePlan asks the strong model for a strategy summary and search
// queries. A generation failure is fatal; a malformed response returns
// (nil, nil) so the stage can degrade to an empty candidate list.
func (uc *UseCases) generatePlan(ctx context.Context, deckContext string) (*model.CandidatePlan, error) {
	var system bytes.Buffer
	err := planSystemPrompt.Execute(&system, map[string]any{
		"MaxCardsPerQuery": uc.maxCardsPerQuery,
		"SyntaxReference":  uc.searcher.SyntaxReference(ctx),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build plan prompt")
	}

	response, err := uc.generator.Generate(ctx, types.TierStrong, system.String(), deckContext)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate candidate plan")
	}

	plan, err := parseCandidatePlan(response)
	if err != nil {
		logging.From(ctx).Error("improperly formatted strategy and queries",
			"error", err.Error(),
			"response", response,
		)
		return nil, nil
	}

	return plan, nil
}

// searchAll runs all queries concurrently and merges the results into one
// set keyed by card name. Later queries overwrite earlier metadata for the
// same name; the returned order records each name's first appearance, walking
// queries in their planned order.
func (uc *UseCases) searchAll(ctx context.Context, queries []string) (map[string]model.Card, []string) {
	logger := logging.From(ctx)

	perQuery := make([][]model.Card, len(queries))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(searchConcurrency)
	for i, query := range queries {
		eg.Go(func() error {
			cards, err := uc.searcher.Search(egCtx, query)
			if err != nil {
				// Per-query failures are isolated: log and skip
				logger.Error("search query failed", "query", query, "error", err.Error())
				return nil
			}
			perQuery[i] = cards
			return nil
		})
	}
	_ = eg.Wait()

	merged := make(map[string]model.Card)
	var order []string
	for _, cards := range perQuery {
		for _, card := range cards {
			if _, exists := merged[card.Name]; !exists {
				order = append(order, card.Name)
			}
			merged[card.Name] = card
		}
	}

	return merged, order
}

// scoreAll evaluates every candidate against the strategy concurrently.
// A failed evaluation scores 0, which the relevance threshold later excludes.
// The running count replaces the previous progress message so pollers see a
// single updating counter; the mutex keeps the count monotonic and serializes
// sink access across workers.
func (uc *UseCases) scoreAll(ctx context.Context, strategy string, names []string, descriptions map[string]string, sink interfaces.ProgressSink) []int {
	scores := make([]int, len(names))
	var mu sync.Mutex
	var done int
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(scoreConcurrency)
	for i, name := range names {
		eg.Go(func() error {
			scores[i] = uc.scoreCandidate(egCtx, strategy, name, descriptions[name])
			mu.Lock()
			done++
			notify(sink, fmt.Sprintf("Evaluated %d of %d potential additions", done, len(names)), true)
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return scores
}

func (uc *UseCases) scoreCandidate(ctx context.Context, strategy, name, description string) int {
	logger := logging.From(ctx)

	user := fmt.Sprintf("<strategy>\n%s\n</strategy>\n<card description>\n%s\n</card description>",
		strategy, description)

	response, err := uc.generator.Generate(ctx, types.TierCheap, scoreSystemPrompt, user)
	if err != nil {
		logger.Error("failed to evaluate potential addition", "name", name, "error", err.Error())
		return 0
	}

	score, err := strconv.Atoi(strings.TrimSpace(response))
	if err != nil {
		logger.Error("non-integer relevance score", "name", name, "response", response)
		return 0
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// rankAndTruncate sorts candidates by score descending (stable, so ties keep
// their merge-enumeration order) and emits descriptions until the count cap
// is reached or the first candidate drops below the relevance threshold.
func rankAndTruncate(names []string, scores []int, descriptions map[string]string) []string {
	type ranked struct {
		name  string
		score int
	}

	candidates := make([]ranked, len(names))
	for i, name := range names {
		candidates[i] = ranked{name: name, score: scores[i]}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var out []string
	for _, c := range candidates {
		if len(out) >= maxCandidates || c.score < minRelevanceScore {
			break
		}
		if desc, exists := descriptions[c.name]; exists {
			out = append(out, desc)
		}
	}
	return out
}
