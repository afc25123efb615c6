package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/domain/types"
	"github.com/deckmuse/deckmuse/pkg/utils/logging"
)

// buildDeckContext assembles the prompt body shared by the candidate planner
// and the final synthesis: decklist, per-card descriptions in decklist order,
// format notes and any additional context.
func (uc *UseCases) buildDeckContext(req *model.AdviceRequest, names []string, descriptions map[string]string) string {
	var sb strings.Builder

	sb.WriteString("<decklist>\n")
	sb.WriteString(req.Decklist)
	sb.WriteString("\n</decklist>\n\n")

	sb.WriteString("<decklist-card-descriptions>\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "<card>\n%s\n</card>\n", descriptions[name])
	}
	sb.WriteString("</decklist-card-descriptions>")

	if req.Format != "" {
		sb.WriteString("\n\n<format-info>\n")
		sb.WriteString(uc.formatInfo(req.Format))
		sb.WriteString("\n</format-info>")
	}

	if req.AdditionalInfo != "" {
		sb.WriteString("\n\n<additional-info>\n")
		sb.WriteString(req.AdditionalInfo)
		sb.WriteString("\n</additional-info>")
	}

	return sb.String()
}

func (uc *UseCases) formatInfo(format string) string {
	info := fmt.Sprintf("The decklist is for the %s format. Consider the rules of %s when "+
		"evaluating the deck. Assume that the current decklist is already legal in %s.",
		format, format, format)

	if rules, exists := uc.formatRules[strings.ToLower(format)]; exists {
		info += "\n" + rules
	}

	return info
}

// Synthesize produces the final advice document from the deck context and
// the ranked candidate descriptions. The generated markdown is returned
// verbatim.
func (uc *UseCases) Synthesize(ctx context.Context, deckContext string, candidates []string) (string, error) {
	user := deckContext

	if len(candidates) > 0 {
		var sb strings.Builder
		sb.WriteString(user)
		sb.WriteString("\n\n<potential-additions>\n")
		for _, desc := range candidates {
			fmt.Fprintf(&sb, "<card>\n%s\n</card>\n", desc)
		}
		sb.WriteString("</potential-additions>")
		user = sb.String()
	}

	text, err := uc.generator.Generate(ctx, types.TierStrong, adviceSystemPrompt, user)
	if err != nil {
		return "", goerr.Wrap(err, "failed to synthesize advice")
	}

	return text, nil
}

// GetDeckAdvice runs the whole pipeline: extract names, resolve
// descriptions, find candidate additions, synthesize the advice document.
// The optional sink receives progress messages at stage boundaries; passing
// nil changes nothing. The first stage-fatal error aborts the run.
func (uc *UseCases) GetDeckAdvice(ctx context.Context, req *model.AdviceRequest, sink interfaces.ProgressSink) (*model.Advice, error) {
	logger := logging.From(ctx)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Info("getting deck improvement advice", "format", req.Format)
	notify(sink, "Starting deck analysis...", false)

	names, err := uc.ExtractNames(ctx, req.Decklist)
	if err != nil {
		return nil, err
	}

	descriptions, err := uc.ResolveDescriptions(ctx, names)
	if err != nil {
		return nil, err
	}
	notify(sink, "Fetched card descriptions for decklist.", false)

	deckContext := uc.buildDeckContext(req, names, descriptions)

	candidates, err := uc.FindCandidates(ctx, deckContext, names, req.Format, sink)
	if err != nil {
		return nil, err
	}

	notify(sink, "Generating overall deck advice...", false)

	text, err := uc.Synthesize(ctx, deckContext, candidates.Descriptions)
	if err != nil {
		return nil, err
	}

	advice := &model.Advice{
		Request:      *req,
		CardNames:    names,
		Descriptions: descriptions,
		Strategy:     candidates.Strategy,
		Candidates:   candidates.Descriptions,
		Text:         text,
	}

	if uc.archive != nil {
		if err := uc.archive.Store(ctx, uuid.New().String(), text); err != nil {
			logger.Error("failed to archive advice document", "error", err.Error())
		}
	}

	return advice, nil
}
