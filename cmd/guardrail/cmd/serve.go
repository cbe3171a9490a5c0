package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cronrunner "guardrail/internal/cron"
	"guardrail/internal/handler"
	"guardrail/internal/service"

	_ "guardrail/docs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background jobs",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger
	cfg := a.cfg

	if cfg.App.Env == "prod" || cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if !cfg.Auth.Disabled && cfg.Auth.APIToken == "" && cfg.Auth.JWTSecret == "" {
		logger.Warn("auth enabled without api_token or jwt_secret; /api routes will reject every request")
	}

	engine := handler.NewRouter(handler.RouterDeps{
		Config:    cfg,
		DB:        a.db,
		Repo:      a.repo,
		Governor:  a.governor,
		Guardrail: a.guardrail,
		Forwarder: a.forwarder,
		Logger:    logger,
	})
	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		heartbeat := &service.HeartbeatService{Repo: a.repo, Forwarder: a.forwarder, Logger: logger}
		if _, err := cronRunner.Add("heartbeat", cfg.Cron.Heartbeat, heartbeat.RunOnce); err != nil {
			logger.Warn("cron register heartbeat failed", zap.Error(err))
		}
		gauge := &service.GovernorGaugeService{Governor: a.governor, Logger: logger}
		if _, err := cronRunner.Add("governor_gauge", cfg.Cron.GovernorGauge, gauge.RunOnce); err != nil {
			logger.Warn("cron register governor gauge failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case serveErr = <-errCh:
		logger.Error("server error", zap.Error(serveErr))
	}

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}
	return serveErr
}
