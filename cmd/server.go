package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/aqhi-canada/internal/config"
	"github.com/vzahanych/aqhi-canada/internal/server"
	"github.com/vzahanych/aqhi-canada/internal/tracker"
	"go.uber.org/zap"
)

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the AQHI HTTP server",
		Long:  `Start the HTTP server that keeps the configured region refreshed and answers region lookups.`,
		RunE:  runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	log.Info("Starting AQHI server",
		zap.String("config_path", configPath),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port),
		zap.String("language", cfg.AQHI.Language))

	tr, err := tracker.NewTracker(&cfg.AQHI, log.Logger, tele)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg.Server, tr, log.Logger, tele)

	// The server still starts when the first load fails; readiness reports it
	if err := tr.Start(cmd.Context()); err != nil {
		log.Warn("Initial AQHI load failed", zap.Error(err))
	}
	defer tr.Stop()

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		log.Error("Server error", zap.Error(err))
		return err
	case <-cmd.Context().Done():
		log.Info("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
