package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"guardrail/internal/audit"
	"guardrail/internal/config"
	"guardrail/internal/db"
	"guardrail/internal/governor"
	"guardrail/internal/logger"
	"guardrail/internal/notify"
	gormrepository "guardrail/internal/repository/gorm"
	"guardrail/internal/risk"
	"guardrail/internal/service"
)

// app holds the wired components shared by serve and the operator commands.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	db         *db.DB
	repo       *gormrepository.Store
	forwarder  *audit.Forwarder
	dispatcher *notify.Dispatcher
	governor   *governor.Governor
	guardrail  *service.GuardrailService
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		log.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		_ = db.Close(dbConn)
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	thresholds, err := risk.NewThresholds(cfg.Risk)
	if err != nil {
		_ = db.Close(dbConn)
		return nil, err
	}
	locker, err := governor.NewLocker(cfg.Governor, cfg.Redis)
	if err != nil {
		_ = db.Close(dbConn)
		return nil, err
	}

	store := gormrepository.New(dbConn.Gorm)
	forwarder := audit.NewForwarder(cfg.Audit, log)
	dispatcher := notify.NewDispatcher(log, cfg.Governor.NotifyQueue, cfg.Notify.Timeout,
		notify.FromConfig(cfg.Notify, cfg.App.Name)...)
	gov := &governor.Governor{
		Repo:      store,
		Locker:    locker,
		Notifier:  dispatcher,
		Forwarder: forwarder,
		Logger:    log,
	}
	if _, err := gov.CurrentState(ctx); err != nil {
		_ = dispatcher.Close(ctx)
		_ = db.Close(dbConn)
		return nil, fmt.Errorf("init governor: %w", err)
	}

	return &app{
		cfg:        cfg,
		logger:     log,
		db:         dbConn,
		repo:       store,
		forwarder:  forwarder,
		dispatcher: dispatcher,
		governor:   gov,
		guardrail: &service.GuardrailService{
			Repo:      store,
			Evaluator: &risk.Evaluator{Thresholds: thresholds, Logger: log},
			Forwarder: forwarder,
			Logger:    log,
		},
	}, nil
}

// close drains pending notifications before releasing the database.
func (a *app) close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Notify.Timeout+time.Second)
	defer cancel()
	if err := a.dispatcher.Close(ctx); err != nil {
		a.logger.Warn("notification queue not drained", zap.Error(err))
	}
	_ = db.Close(a.db)
	_ = a.logger.Sync()
}
