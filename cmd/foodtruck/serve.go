package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vasiliy-maslov/foodtruck-service/internal/events"
	handler "github.com/vasiliy-maslov/foodtruck-service/internal/handler/http"
	"github.com/vasiliy-maslov/foodtruck-service/internal/realtime"
	"github.com/vasiliy-maslov/foodtruck-service/internal/transport"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log.Info().Msg("Food truck service starting...")

	pg, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer pg.Close()

	broker, err := newPublisher(cfg.Events)
	if err != nil {
		return err
	}
	hub := realtime.NewHub()
	publisher := events.NewMulti(hub, broker)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close event publishers")
		}
	}()

	verifier, err := newVerifier(ctx, cfg.Auth)
	if err != nil {
		return err
	}

	services, err := newServices(pg, publisher, cfg)
	if err != nil {
		return err
	}
	router := transport.NewRouter(handler.NewHandler(services, verifier, hub))

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.App.Port).Str("events", cfg.Events.Driver).Str("auth", cfg.Auth.Provider).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("Server failed")
			return err
		}
	case <-sigChan:
		log.Info().Msg("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}
