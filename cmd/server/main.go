package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Punk/internal/adapters/auth"
	"github.com/dkeye/Punk/internal/adapters/blob"
	router "github.com/dkeye/Punk/internal/adapters/http"
	"github.com/dkeye/Punk/internal/app"
	"github.com/dkeye/Punk/internal/app/orch"
	"github.com/dkeye/Punk/internal/config"
	"github.com/dkeye/Punk/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	st, err := store.Open(ctx, store.Options{Driver: cfg.Store.Driver, Path: cfg.Store.Path, DSN: cfg.Store.DSN})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	defer st.Close()

	jwtp, err := auth.NewJWTProvider(cfg.Secret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init auth")
	}
	blobs, err := blob.NewLocalStore(cfg.Upload.Dir, cfg.Upload.BaseURL, cfg.Upload.MaxBytes)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Upload.Dir).Msg("failed to init uploads")
	}

	persister := app.NewPersister(st, cfg.Persist.Debounce, cfg.Persist.RetryInterval)
	o := orch.New(cfg.RoomCodeLength, persister, app.PolicyByName(cfg.Backpressure), jwtp, blobs)
	persister.Rooms = o.Rooms
	persister.Users = o.Users

	if err := persister.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load snapshot")
	}
	persistDone := make(chan struct{})
	go func() {
		defer close(persistDone)
		persister.Run(ctx)
	}()

	r := router.SetupRouter(ctx, cfg, o, jwtp)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Punk server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	<-persistDone
	log.Info().Msg("Server exited gracefully")
}
