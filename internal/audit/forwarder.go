package audit

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"guardrail/internal/config"
	"guardrail/internal/metrics"
)

// Sink accepts audit entries. *Client implements it.
type Sink interface {
	CreateLog(ctx context.Context, entry LogEntry) error
}

// Forwarder copies committed audit events to an optional remote sink. It
// never blocks or fails the caller. A nil Forwarder is a no-op.
type Forwarder struct {
	Sink    Sink
	Agent   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewForwarder returns nil when no remote sink is configured.
func NewForwarder(cfg config.AuditConfig, logger *zap.Logger) *Forwarder {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	return &Forwarder{
		Sink:    &Client{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey},
		Agent:   cfg.Agent,
		Timeout: cfg.Timeout,
		Logger:  logger,
	}
}

// Forward sends the event in the background.
func (f *Forwarder) Forward(eventType, level string, details map[string]any) {
	if f == nil || f.Sink == nil {
		return
	}
	go func() {
		_ = f.ForwardSync(context.Background(), eventType, level, details)
	}()
}

// ForwardSync sends the event and reports the sink error. Failures are
// logged and counted here so callers may ignore the result.
func (f *Forwarder) ForwardSync(ctx context.Context, eventType, level string, details map[string]any) error {
	if f == nil || f.Sink == nil {
		return nil
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	agent := strings.TrimSpace(f.Agent)
	if agent == "" {
		agent = "guardrail"
	}
	if level == "" {
		level = "info"
	}
	if details == nil {
		details = map[string]any{}
	}
	err := f.Sink.CreateLog(ctx, LogEntry{
		Agent:   agent,
		Action:  "guardrail_" + eventType,
		Level:   level,
		Details: details,
	})
	if err != nil {
		metrics.RecordAuditForwardFailure()
		if f.Logger != nil {
			f.Logger.Debug("audit forward failed", zap.String("event_type", eventType), zap.Error(err))
		}
	}
	return err
}
