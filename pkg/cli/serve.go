package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/deckmuse/deckmuse/pkg/cli/config"
	httpctrl "github.com/deckmuse/deckmuse/pkg/controller/http"
	"github.com/deckmuse/deckmuse/pkg/usecase"
	"github.com/deckmuse/deckmuse/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var llmCfg config.LLM
	var scryfallCfg config.Scryfall
	var formatsCfg config.Formats
	var archiveCfg config.Archive

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("DECKMUSE_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, scryfallCfg.Flags()...)
	flags = append(flags, formatsCfg.Flags()...)
	flags = append(flags, archiveCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Serve configuration",
				"repository", repoCfg,
				"llm", llmCfg,
				"scryfall", scryfallCfg,
				"archive", archiveCfg,
			)

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			generator, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM clients")
			}

			rules, err := formatsCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load format rules")
			}

			searcher := scryfallCfg.Configure()

			ucOpts := []usecase.Option{
				usecase.WithFormatRules(rules),
				usecase.WithMaxCardsPerQuery(scryfallCfg.MaxCardsPerQuery()),
			}

			archiveSvc, err := archiveCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure archive")
			}
			if archiveSvc != nil {
				defer func() {
					if err := archiveSvc.Close(); err != nil {
						logging.Default().Error("failed to close archive service", "error", err.Error())
					}
				}()
				ucOpts = append(ucOpts, usecase.WithArchive(archiveSvc))
				logging.Default().Info("Advice archiving enabled")
			}

			uc := usecase.New(repo, searcher, generator, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, searcher),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
