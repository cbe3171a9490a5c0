package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"guardrail/internal/audit"
	"guardrail/internal/metrics"
	"guardrail/internal/recorder"
	"guardrail/internal/repository"
	"guardrail/internal/risk"
)

// GuardrailService is the transactional boundary of one evaluation: the
// governor read that feeds the decision and the decision write share a
// single database transaction.
type GuardrailService struct {
	Repo      repository.Repository
	Evaluator *risk.Evaluator
	Forwarder *audit.Forwarder
	Logger    *zap.Logger
}

// Evaluate parses raw and evaluates it against snap. Malformed plans return
// risk.ErrMalformedPlan and leave no record.
func (s *GuardrailService) Evaluate(ctx context.Context, raw []byte, snap risk.AccountSnapshot) (risk.Decision, error) {
	plan, err := risk.ParsePlan(raw)
	if err != nil {
		metrics.RecordEvaluationError("malformed")
		if s != nil && s.Logger != nil {
			s.Logger.Warn("guardrail: malformed plan", zap.Error(err))
		}
		return risk.Decision{}, err
	}
	return s.EvaluatePlan(ctx, plan, snap)
}

// EvaluatePlan evaluates an already parsed plan.
func (s *GuardrailService) EvaluatePlan(ctx context.Context, plan risk.TradePlan, snap risk.AccountSnapshot) (risk.Decision, error) {
	if s == nil || s.Repo == nil || s.Evaluator == nil {
		return risk.Decision{}, risk.Persistence("evaluate", errors.New("guardrail service not configured"))
	}
	if err := snap.Validate(); err != nil {
		metrics.RecordEvaluationError("invalid_snapshot")
		if s.Logger != nil {
			s.Logger.Warn("guardrail: invalid account snapshot", zap.Error(err))
		}
		return risk.Decision{}, err
	}
	start := time.Now()

	var decision risk.Decision
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		latest, err := tx.LatestRiskState(ctx)
		if err != nil {
			return risk.Persistence("read governor state", err)
		}
		snap.GovernorState = governorMode(latest != nil && latest.Paused, snap.GovernorState)

		d, err := s.Evaluator.WithRecorder(recorder.New(tx)).Evaluate(ctx, plan, snap)
		if err != nil {
			return err
		}
		decision = d
		return nil
	})
	if err != nil {
		if errors.Is(err, risk.ErrMalformedPlan) {
			metrics.RecordEvaluationError("malformed")
			return risk.Decision{}, err
		}
		if errors.Is(err, risk.ErrInvalidSnapshot) {
			metrics.RecordEvaluationError("invalid_snapshot")
			return risk.Decision{}, err
		}
		metrics.RecordEvaluationError("persistence")
		return risk.Decision{}, risk.Persistence("record decision", err)
	}

	metrics.RecordDecision(string(decision.Status), decision.ReasonStrings(), time.Since(start).Seconds())
	level := "info"
	if !decision.Allowed {
		level = "warn"
	}
	s.Forwarder.Forward(audit.EventRiskDecision, level, map[string]any{
		"decision_id": decision.DecisionID,
		"plan_id":     decision.PlanID,
		"status":      string(decision.Status),
		"reasons":     decision.ReasonStrings(),
	})
	return decision, nil
}

// governorMode combines the persisted flag with the caller's view. Either
// side reporting a lockdown wins.
func governorMode(persistedPaused bool, callerMode risk.Mode) risk.Mode {
	if persistedPaused || callerMode == risk.ModeLockdown {
		return risk.ModeLockdown
	}
	return risk.ModeNormal
}
