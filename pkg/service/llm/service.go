package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
	"github.com/deckmuse/deckmuse/pkg/domain/types"
	"github.com/deckmuse/deckmuse/pkg/utils/logging"
)

// service implements interfaces.Generator with two gollem clients: a cheap
// model for mechanical tasks and a strong model for planning and synthesis.
type service struct {
	cheap  gollem.LLMClient
	strong gollem.LLMClient
}

// New creates a new two-tier generator. Both clients are required.
func New(cheap, strong gollem.LLMClient) (interfaces.Generator, error) {
	if cheap == nil {
		return nil, goerr.New("cheap model client is required")
	}
	if strong == nil {
		return nil, goerr.New("strong model client is required")
	}

	return &service{
		cheap:  cheap,
		strong: strong,
	}, nil
}

func (s *service) Generate(ctx context.Context, tier types.ModelTier, system, user string) (string, error) {
	if err := tier.Validate(); err != nil {
		return "", err
	}

	client := s.cheap
	if tier == types.TierStrong {
		client = s.strong
	}

	text, err := s.generate(ctx, client, system, user)
	if err == nil {
		return text, nil
	}

	// Some models reject a separate system instruction role. Only that
	// rejection gets a second attempt, with the instruction folded into the
	// user content; any other failure surfaces immediately.
	if system == "" || !isRoleRejection(err) {
		return "", goerr.Wrap(errors.Join(types.ErrGeneration, err), "generation failed",
			goerr.V("tier", tier),
		)
	}

	logging.From(ctx).Debug("system instruction role rejected, retrying with folded prompt",
		"tier", tier, "error", err.Error())

	text, retryErr := s.generate(ctx, client, "", system+"\n\n"+user)
	if retryErr != nil {
		return "", goerr.Wrap(errors.Join(types.ErrGeneration, retryErr), "generation failed",
			goerr.V("tier", tier),
		)
	}
	return text, nil
}

// isRoleRejection reports whether the provider refused the separate system
// instruction role. Models with a reduced API (o1-mini and friends) reject
// the request with an unsupported_value error on the first message's role.
func isRoleRejection(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "unsupported_value") && strings.Contains(msg, "role")
}

func (s *service) generate(ctx context.Context, client gollem.LLMClient, system, user string) (string, error) {
	var opts []gollem.SessionOption
	if system != "" {
		opts = append(opts, gollem.WithSessionSystemPrompt(system))
	}

	session, err := client.NewSession(ctx, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create generation session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(user))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.New("generation returned no content")
	}

	return strings.Join(resp.Texts, "\n"), nil
}
