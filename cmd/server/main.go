package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andres1jh8/Registro-Back/internal/config"
	"github.com/andres1jh8/Registro-Back/internal/infra"
	"github.com/andres1jh8/Registro-Back/internal/router"
	"github.com/andres1jh8/Registro-Back/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty console in development, JSON in production
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	images, err := infra.NewImageStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to init image storage")
	}
	if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ReportDir).Msg("failed to create report dir")
	}

	deps := router.Deps{
		DB:       db,
		Redis:    rdb,
		Images:   images,
		Enqueuer: worker.NewDispatcher(rdb),
	}
	svcs := router.NewServices(cfg, deps)

	// Report e-mails are rendered and sent off the request path.
	mailer := infra.NewMailer(cfg)
	if !mailer.Configured() {
		log.Warn().Msg("SMTP_HOST not set: report e-mails will end up in the DLQ")
	}
	worker.StartWorkerPool(ctx, rdb, &worker.WorkerHandlers{
		ReporteEmail: worker.NewReporteEmailWorker(svcs.Reportes, mailer),
	}, cfg.WorkerPoolSize)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(cfg, deps, svcs),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		var err error
		if cfg.TLSCertFile != "" {
			keyFile := cfg.TLSKeyFile
			if keyFile == "" {
				keyFile = cfg.TLSCertFile
			}
			log.Info().Msgf("registro backend listening on :%d (TLS)", cfg.Port)
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, keyFile)
		} else {
			log.Info().Msgf("registro backend listening on :%d", cfg.Port)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
