package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/artlens/guide/backend/internal/config"
	"github.com/artlens/guide/backend/internal/handler"
	guideHandler "github.com/artlens/guide/backend/internal/handler/guide"
	"github.com/artlens/guide/backend/internal/service/ai"
	"github.com/artlens/guide/backend/internal/service/blob"
	"github.com/artlens/guide/backend/internal/service/session"
	"github.com/artlens/guide/backend/internal/store/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, continuing with system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Optional durable mirror of session state.
	var durable session.DurableStore
	var recorder guideHandler.Recorder
	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			log.Warn().Err(err).Msg("postgres unavailable, continuing in-memory only")
		} else {
			defer pool.Close()
			store := postgres.New(pool)
			if err := store.EnsureSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("schema bootstrap failed, continuing in-memory only")
			} else {
				durable = store
				recorder = store
				log.Info().Msg("durable session store enabled")
			}
		}
	}

	sessions := session.NewService(durable)

	// Optional public image bucket.
	var uploader guideHandler.Uploader
	if cfg.Blob.Enabled() {
		uploader = blob.New(cfg.Blob)
		log.Info().Msg("image uploads enabled")
	}

	var analyzer guideHandler.Analyzer
	if cfg.AI.Enabled() {
		aiSvc, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize AI service, guide endpoints will return 503")
		} else {
			analyzer = aiSvc
			log.Info().Str("model", cfg.AI.Model).Msg("AI service initialized")
		}
	} else {
		log.Warn().Msg("model credentials not configured, guide endpoints will return 503")
	}

	router := handler.NewRouter(guideHandler.New(analyzer, sessions, uploader, recorder))

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("museum guide backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
