package risk

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"guardrail/internal/id"
)

// DecisionRecorder durably stores a decision and its audit event.
type DecisionRecorder interface {
	Record(ctx context.Context, d Decision) error
}

// RecorderFunc adapts a function to DecisionRecorder.
type RecorderFunc func(ctx context.Context, d Decision) error

func (f RecorderFunc) Record(ctx context.Context, d Decision) error {
	return f(ctx, d)
}

// Evaluator turns a plan and an account snapshot into a recorded Decision.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	Thresholds Thresholds
	Recorder   DecisionRecorder
	Logger     *zap.Logger

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func(ts time.Time) string
}

// WithRecorder returns a copy of e that records through r.
func (e *Evaluator) WithRecorder(r DecisionRecorder) *Evaluator {
	cp := *e
	cp.Recorder = r
	return &cp
}

// EvaluateRaw parses a raw plan document and evaluates it. Malformed plans
// are rejected before anything is recorded.
func (e *Evaluator) EvaluateRaw(ctx context.Context, raw []byte, snap AccountSnapshot) (Decision, error) {
	plan, err := ParsePlan(raw)
	if err != nil {
		if e != nil && e.Logger != nil {
			e.Logger.Warn("risk: malformed plan", zap.Error(err))
		}
		return Decision{}, err
	}
	return e.Evaluate(ctx, plan, snap)
}

// Evaluate runs every guardrail, records the decision and returns it. A
// rejection is a normal result. An error means the decision was not
// recorded and must not be acted on.
func (e *Evaluator) Evaluate(ctx context.Context, plan TradePlan, snap AccountSnapshot) (Decision, error) {
	if e == nil {
		return Decision{}, errors.New("risk: nil evaluator")
	}
	if strings.TrimSpace(plan.PlanID) == "" {
		return Decision{}, &MalformedPlanError{Field: "meta.plan_id", Problem: "missing"}
	}
	if len(plan.PlanID) > PlanIDMaxLen {
		return Decision{}, &MalformedPlanError{Field: "meta.plan_id", Problem: "too long"}
	}
	if err := snap.Validate(); err != nil {
		return Decision{}, err
	}

	out := Check(plan, snap, e.Thresholds)
	ts := e.now()
	d := Decision{
		DecisionID: e.newID(ts),
		PlanID:     plan.PlanID,
		Timestamp:  ts,
		Allowed:    out.Allowed(),
		Status:     StatusRejected,
		Reasons:    out.Reasons,
		Metrics:    out.Metrics,
	}
	if d.Allowed {
		d.Status = StatusApproved
	}

	if e.Recorder == nil {
		return Decision{}, Persistence("record decision", ErrNoRecorder)
	}
	if err := e.Recorder.Record(ctx, d); err != nil {
		if e.Logger != nil {
			e.Logger.Error("risk: decision not recorded",
				zap.String("plan_id", d.PlanID),
				zap.String("status", string(d.Status)),
				zap.Error(err),
			)
		}
		return Decision{}, Persistence("record decision", err)
	}

	e.log(d, out)
	return d, nil
}

func (e *Evaluator) log(d Decision, out Outcome) {
	if e.Logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("decision_id", d.DecisionID),
		zap.String("plan_id", d.PlanID),
		zap.String("status", string(d.Status)),
		zap.Strings("reasons", d.ReasonStrings()),
		zap.String("equity", d.Metrics.Equity.StringFixed(2)),
		zap.String("drawdown", d.Metrics.Drawdown.StringFixed(4)),
		zap.String("notional_limit", d.Metrics.NotionalLimit.StringFixed(2)),
		zap.String("stop_distance_pct", out.StopDistancePct.StringFixed(6)),
	}
	if d.Allowed {
		e.Logger.Info("risk: plan approved", fields...)
		return
	}
	e.Logger.Warn("risk: plan rejected", fields...)
}

func (e *Evaluator) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *Evaluator) newID(ts time.Time) string {
	if e.NewID != nil {
		return e.NewID(ts)
	}
	return id.NewAt(ts)
}
