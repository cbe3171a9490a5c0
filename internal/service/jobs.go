package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"guardrail/internal/audit"
	"guardrail/internal/governor"
	"guardrail/internal/metrics"
	"guardrail/internal/repository"
)

// HeartbeatService writes a periodic liveness row to the audit log.
type HeartbeatService struct {
	Repo      repository.Repository
	Forwarder *audit.Forwarder
	Logger    *zap.Logger
}

func (s *HeartbeatService) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	event, err := audit.NewEvent(audit.EventHeartbeat, time.Now().UTC(), audit.HeartbeatPayload{Status: "ok"})
	if err != nil {
		return err
	}
	if err := s.Repo.InsertAuditEvent(ctx, event); err != nil {
		return err
	}
	s.Forwarder.Forward(audit.EventHeartbeat, "info", map[string]any{"status": "ok"})
	return nil
}

// GovernorGaugeService keeps the paused gauge aligned with the stored log,
// which other processes may also write.
type GovernorGaugeService struct {
	Governor *governor.Governor
	Logger   *zap.Logger
}

func (s *GovernorGaugeService) RunOnce(ctx context.Context) error {
	if s == nil || s.Governor == nil {
		return nil
	}
	st, err := s.Governor.CurrentState(ctx)
	if err != nil {
		return err
	}
	metrics.SetGovernorPaused(st.Paused)
	return nil
}
