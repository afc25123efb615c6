package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/deckmuse/deckmuse/pkg/cli/config"
	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/usecase"
)

// consoleSink prints progress messages to stderr. Replacement messages
// rewrite the current line so counters update in place.
type consoleSink struct {
	w          io.Writer
	paint      *color.Color
	openedLine bool
}

func newConsoleSink(w io.Writer) *consoleSink {
	return &consoleSink{
		w:     w,
		paint: color.New(color.FgCyan),
	}
}

func (s *consoleSink) Notify(msg string, replace bool) {
	if replace && s.openedLine {
		fmt.Fprint(s.w, "\r\x1b[2K")
		_, _ = s.paint.Fprint(s.w, msg)
		return
	}
	if s.openedLine {
		fmt.Fprintln(s.w)
	}
	_, _ = s.paint.Fprint(s.w, msg)
	s.openedLine = true
}

func (s *consoleSink) finish() {
	if s.openedLine {
		fmt.Fprintln(s.w)
	}
}

func cmdAdvise() *cli.Command {
	var decklistPath string
	var format string
	var additionalInfo string
	var repoCfg config.Repository
	var llmCfg config.LLM
	var scryfallCfg config.Scryfall
	var formatsCfg config.Formats

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "decklist",
			Aliases:     []string{"d"},
			Usage:       "Path to the decklist file (- for stdin)",
			Value:       "-",
			Destination: &decklistPath,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Deck format (e.g. modern, legacy, brawl)",
			Destination: &format,
		},
		&cli.StringFlag{
			Name:        "info",
			Aliases:     []string{"i"},
			Usage:       "Additional context for the advisor (budget, meta, cards to keep)",
			Destination: &additionalInfo,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, scryfallCfg.Flags()...)
	flags = append(flags, formatsCfg.Flags()...)

	return &cli.Command{
		Name:    "advise",
		Aliases: []string{"a"},
		Usage:   "Analyze a decklist and print advice to stdout",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			decklist, err := readDecklist(decklistPath)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				_ = repo.Close()
			}()

			generator, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM clients")
			}

			rules, err := formatsCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load format rules")
			}

			uc := usecase.New(repo, scryfallCfg.Configure(), generator,
				usecase.WithFormatRules(rules),
				usecase.WithMaxCardsPerQuery(scryfallCfg.MaxCardsPerQuery()),
			)

			sink := newConsoleSink(os.Stderr)
			advice, err := uc.GetDeckAdvice(ctx, &model.AdviceRequest{
				Decklist:       decklist,
				Format:         format,
				AdditionalInfo: additionalInfo,
			}, sink)
			sink.finish()
			if err != nil {
				return err
			}

			fmt.Println(advice.Text)
			return nil
		},
	}
}

func readDecklist(path string) (string, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read decklist from stdin")
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read decklist file", goerr.V("path", path))
		}
	}

	return string(data), nil
}
