package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sheet_ai_server/internal/api"
	"sheet_ai_server/internal/output"
	"sheet_ai_server/internal/render"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// --- Dependency Initialization ---
	store, err := output.NewStore(cfg.OutputDir, cfg.CleanupDelay, logger.Named("output"))
	if err != nil {
		return err
	}
	if removed, err := store.Sweep(cfg.CleanupDelay); err != nil {
		logger.Warn("Failed to sweep output directory", zap.Error(err))
	} else if removed > 0 {
		logger.Info("Removed leftover output files", zap.Int("count", removed))
	}

	pipeline := api.NewPipeline(newGenerator(cfg, logger), render.NewRenderer(store, logger.Named("render")))
	apiHandler := api.NewAPIHandler(pipeline, store, logger.Named("api"))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
		logger.Info("Running in Gin Debug Mode")
	}

	router := api.NewRouter(apiHandler, api.RouterOptions{
		OutputDir:    store.Dir(),
		ServeOutput:  cfg.ServeOutput,
		MaxBodyBytes: cfg.MaxBodyBytes,
		CORSOrigins:  cfg.CORSOrigins,
	}, logger.Named("http"))

	// No WriteTimeout: a generation request lasts as long as the model takes to answer.
	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Backend running", zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Port)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("Received signal, shutting down server", zap.String("signal", sig.String()))
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("API server listen error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server forced shutdown", zap.Error(err))
	} else {
		logger.Info("API server gracefully stopped")
	}

	store.Flush()
	logger.Info("Application exiting")
	return nil
}
