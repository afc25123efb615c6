package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"

	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
	"github.com/deckmuse/deckmuse/pkg/service/llm"
)

// LLM holds CLI flags for the two-tier generation backend. The cheap model
// handles name extraction and relevance scoring; the strong model handles
// query planning and advice synthesis.
type LLM struct {
	provider       string
	openaiAPIKey   string
	geminiProject  string
	geminiLocation string
	cheapModel     string
	strongModel    string
}

// Flags returns CLI flags for LLM configuration
func (x *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "LLM provider (openai or gemini)",
			Category:    "LLM",
			Value:       "openai",
			Sources:     cli.EnvVars("DECKMUSE_LLM_PROVIDER"),
			Destination: &x.provider,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key (required when using openai provider)",
			Category:    "LLM",
			Sources:     cli.EnvVars("DECKMUSE_OPENAI_API_KEY"),
			Destination: &x.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini (required when using gemini provider)",
			Category:    "LLM",
			Sources:     cli.EnvVars("DECKMUSE_GEMINI_PROJECT"),
			Destination: &x.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Category:    "LLM",
			Value:       "us-central1",
			Sources:     cli.EnvVars("DECKMUSE_GEMINI_LOCATION"),
			Destination: &x.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "cheap-model",
			Usage:       "Model name for mechanical tasks (extraction, scoring)",
			Category:    "LLM",
			Value:       "gpt-4o-mini",
			Sources:     cli.EnvVars("DECKMUSE_CHEAP_MODEL"),
			Destination: &x.cheapModel,
		},
		&cli.StringFlag{
			Name:        "strong-model",
			Usage:       "Model name for planning and advice synthesis",
			Category:    "LLM",
			Value:       "gpt-4o",
			Sources:     cli.EnvVars("DECKMUSE_STRONG_MODEL"),
			Destination: &x.strongModel,
		},
	}
}

func (x LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", x.provider),
		slog.Int("openai-api-key.len", len(x.openaiAPIKey)),
		slog.String("cheap-model", x.cheapModel),
		slog.String("strong-model", x.strongModel),
	)
}

// Configure creates the two-tier generator from the configured provider
func (x *LLM) Configure(ctx context.Context) (interfaces.Generator, error) {
	cheap, err := x.newClient(ctx, x.cheapModel)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create cheap model client")
	}

	strong, err := x.newClient(ctx, x.strongModel)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create strong model client")
	}

	return llm.New(cheap, strong)
}

func (x *LLM) newClient(ctx context.Context, model string) (gollem.LLMClient, error) {
	switch x.provider {
	case "openai":
		if x.openaiAPIKey == "" {
			return nil, goerr.New("openai-api-key is required when using openai provider")
		}
		return openai.New(ctx, x.openaiAPIKey, openai.WithModel(model))

	case "gemini":
		if x.geminiProject == "" {
			return nil, goerr.New("gemini-project is required when using gemini provider")
		}
		return gemini.New(ctx, x.geminiProject, x.geminiLocation, gemini.WithModel(model))

	default:
		return nil, goerr.Wrap(ErrInvalidProvider, "unsupported provider", goerr.V("provider", x.provider))
	}
}
