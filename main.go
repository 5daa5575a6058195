// main.go
//
// Entrypoint for the Jeopardy board server.
// Wires config → logging → trivia client (+ optional SQLite cache) → board
// builder → session store → HTTP server, then serves until SIGINT/SIGTERM.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/jeopardy/internal/cache"
	"github.com/robalobadob/jeopardy/internal/config"
	"github.com/robalobadob/jeopardy/internal/httpserver"
	"github.com/robalobadob/jeopardy/internal/store"
	"github.com/robalobadob/jeopardy/internal/trivia"
)

const releaseVersion = "0.1.0"

func main() {
	_ = godotenv.Load()
	cfg := &config.Config{}
	if err := newCmd(cfg).Execute(); err != nil {
		log.Fatal().Err(err).Msg("jeopardy exited")
	}
}

func newCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jeopardy",
		Short:         "Serves a trivia board backed by a jservice-compatible API.",
		Args:          cobra.NoArgs,
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			config.BindEnv(cmd.Flags())
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cfg)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cfg.RegisterFlags(cmd.Flags())
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("jeopardy v{{.Version}}\n")
	return cmd
}

func setupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	var src trivia.Source = trivia.NewClient(cfg.APIBase, cfg.HTTPTimeout)
	opts := httpserver.Options{
		SessionSecret: cfg.SessionSecret,
		SecureCookies: cfg.SecureCookies,
	}

	if cfg.CachePath != "" {
		cached, err := cache.Open(cfg.CachePath, src, cfg.CacheTTL)
		if err != nil {
			return err
		}
		defer cached.Close()
		src = cached
		opts.Cache = cached
		log.Info().Str("path", cfg.CachePath).Dur("ttl", cfg.CacheTTL).Msg("category cache enabled")
	}

	seed := trivia.RandomSeeder()
	if cfg.Mode == config.ModeDaily {
		seed = trivia.DailySeeder(cfg.DailySalt, time.Now)
	}
	builder := trivia.NewBuilder(src, cfg.BoardOptions(), seed)

	sessions := store.NewMemoryStore()
	go store.RunReaper(ctx, sessions, cfg.SessionTTL, time.Minute)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpserver.New(sessions, builder, opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Minute,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("api", cfg.APIBase).Str("mode", cfg.Mode).
			Str("version", releaseVersion).Msg("starting jeopardy")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}
