package governor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"guardrail/internal/audit"
	"guardrail/internal/metrics"
	"guardrail/internal/models"
	"guardrail/internal/notify"
	"guardrail/internal/repository"
	"guardrail/internal/risk"
)

// State is one entry of the governor log.
type State struct {
	ID     uint64    `json:"id"`
	Ts     time.Time `json:"ts"`
	Paused bool      `json:"paused"`
	Reason *string   `json:"reason"`
}

func (s State) Mode() risk.Mode {
	if s.Paused {
		return risk.ModeLockdown
	}
	return risk.ModeNormal
}

// Enqueuer accepts pause notifications without blocking. *notify.Dispatcher
// implements it.
type Enqueuer interface {
	Enqueue(msg notify.Message) bool
}

// Governor owns the global pause flag. The current state is always the
// latest row of an append-only log; every transition appends a new row.
// Writers are serialised by Locker and by a storage-level lock inside the
// write transaction.
type Governor struct {
	Repo      repository.Repository
	Locker    Locker
	Notifier  Enqueuer
	Forwarder *audit.Forwarder
	Logger    *zap.Logger
	Now       func() time.Time

	once     sync.Once
	fallback Locker
}

// CurrentState returns the latest record. An empty log is initialised with
// a single NORMAL record.
func (g *Governor) CurrentState(ctx context.Context) (State, error) {
	if g == nil || g.Repo == nil {
		return State{}, risk.Persistence("read governor state", errors.New("repository unavailable"))
	}
	row, err := g.Repo.LatestRiskState(ctx)
	if err != nil {
		return State{}, risk.Persistence("read governor state", err)
	}
	if row != nil {
		return fromRow(*row), nil
	}
	return g.initialize(ctx)
}

func (g *Governor) initialize(ctx context.Context) (State, error) {
	unlock, err := g.locker().Lock(ctx)
	if err != nil {
		return State{}, risk.Persistence("lock governor state", err)
	}
	defer unlock()

	var (
		out     State
		created bool
	)
	err = g.Repo.InTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockRiskState(ctx); err != nil {
			return err
		}
		row, err := tx.LatestRiskState(ctx)
		if err != nil {
			return err
		}
		if row != nil {
			out = fromRow(*row)
			return nil
		}
		row = &models.RiskState{Ts: g.now(), Paused: false}
		if err := tx.AppendRiskState(ctx, row); err != nil {
			return err
		}
		out = fromRow(*row)
		created = true
		return nil
	})
	if err != nil {
		return State{}, risk.Persistence("initialise governor state", err)
	}
	if created && g.Logger != nil {
		g.Logger.Info("governor: initialised", zap.Uint64("id", out.ID))
	}
	metrics.SetGovernorPaused(out.Paused)
	return out, nil
}

// Pause appends a LOCKDOWN record and queues a notification. Notification
// problems never fail the transition.
func (g *Governor) Pause(ctx context.Context, reason string) (State, error) {
	var r *string
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		r = &trimmed
	}
	st, err := g.transition(ctx, true, r)
	if err != nil {
		return State{}, err
	}
	label := "manual"
	if st.Reason != nil {
		label = *st.Reason
	}
	if g.Notifier != nil && !g.Notifier.Enqueue(notify.Message{
		Event: audit.EventRiskPause,
		Text:  "Risk pause triggered: " + label,
	}) && g.Logger != nil {
		g.Logger.Debug("governor: pause notification not queued")
	}
	return st, nil
}

// Resume appends a NORMAL record with no reason.
func (g *Governor) Resume(ctx context.Context) (State, error) {
	return g.transition(ctx, false, nil)
}

func (g *Governor) transition(ctx context.Context, paused bool, reason *string) (State, error) {
	if g == nil || g.Repo == nil {
		return State{}, risk.Persistence("append governor state", errors.New("repository unavailable"))
	}
	unlock, err := g.locker().Lock(ctx)
	if err != nil {
		return State{}, risk.Persistence("lock governor state", err)
	}
	defer unlock()

	row := &models.RiskState{Ts: g.now(), Paused: paused, Reason: reason}
	err = g.Repo.InTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockRiskState(ctx); err != nil {
			return err
		}
		if err := tx.AppendRiskState(ctx, row); err != nil {
			return err
		}
		event, err := audit.NewEvent(audit.EventRiskPause, row.Ts, audit.PausePayload{
			Paused: row.Paused,
			Reason: row.Reason,
		})
		if err != nil {
			return err
		}
		return tx.InsertAuditEvent(ctx, event)
	})
	if err != nil {
		if g.Logger != nil {
			g.Logger.Error("governor: transition not recorded", zap.Bool("paused", paused), zap.Error(err))
		}
		return State{}, risk.Persistence("append governor state", err)
	}

	st := fromRow(*row)
	metrics.RecordGovernorTransition(st.Paused)
	details := map[string]any{"paused": st.Paused, "reason": st.Reason}
	level := "info"
	if st.Paused {
		level = "warn"
	}
	g.Forwarder.Forward(audit.EventRiskPause, level, details)
	if g.Logger != nil {
		fields := []zap.Field{zap.Uint64("id", st.ID), zap.Bool("paused", st.Paused)}
		if st.Reason != nil {
			fields = append(fields, zap.String("reason", *st.Reason))
		}
		g.Logger.Warn("governor: state changed", fields...)
	}
	return st, nil
}

// History returns governor records newest first with the total count.
func (g *Governor) History(ctx context.Context, limit, offset int) ([]State, int64, error) {
	if g == nil || g.Repo == nil {
		return nil, 0, risk.Persistence("read governor history", errors.New("repository unavailable"))
	}
	params := repository.ListRiskStatesParams{Limit: limit, Offset: offset}
	rows, err := g.Repo.ListRiskStates(ctx, params)
	if err != nil {
		return nil, 0, risk.Persistence("read governor history", err)
	}
	total, err := g.Repo.CountRiskStates(ctx, params)
	if err != nil {
		return nil, 0, risk.Persistence("read governor history", err)
	}
	out := make([]State, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, total, nil
}

func (g *Governor) locker() Locker {
	if g.Locker != nil {
		return g.Locker
	}
	g.once.Do(func() { g.fallback = NewLocalLocker() })
	return g.fallback
}

func (g *Governor) now() time.Time {
	if g.Now != nil {
		return g.Now().UTC()
	}
	return time.Now().UTC()
}

func fromRow(row models.RiskState) State {
	return State{
		ID:     row.ID,
		Ts:     row.Ts.UTC(),
		Paused: row.Paused,
		Reason: row.Reason,
	}
}
