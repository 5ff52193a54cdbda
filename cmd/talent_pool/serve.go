package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/talent-pool/internal/logging"
	"github.com/jonathan/talent-pool/internal/server"
	"github.com/jonathan/talent-pool/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing login, the talent pool listing, batch recompute and per-candidate score endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: PORT or 8080)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadServiceConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	logger := logging.Setup(logging.Options{Production: cfg.IsProduction(), Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.OTel.Endpoint,
		Headers:     cfg.OTel.Headers,
		ServiceName: cfg.OTel.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if serveMigrate {
		if err := st.Migrate(ctx); err != nil {
			return err
		}
	}

	driver, _, err := newDriver(st, cfg, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{Port: cfg.Port, Logger: logger}, st, driver)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("talent pool service configured",
		"store", cfg.StoreDriver,
		"recompute_default_limit", cfg.Recompute.DefaultLimit,
		"recompute_max_limit", cfg.Recompute.MaxLimit,
		"tracing", cfg.OTel.Endpoint != "",
	)
	return srv.Start(ctx)
}
