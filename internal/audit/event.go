package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"guardrail/internal/models"
)

const (
	EventRiskDecision = "risk_decision"
	EventRiskPause    = "risk_pause"
	EventHeartbeat    = "heartbeat"
	EventAlertmanager = "alertmanager"
)

type DecisionPayload struct {
	PlanID string `json:"plan_id"`
	Status string `json:"status"`
}

type PausePayload struct {
	Paused bool    `json:"paused"`
	Reason *string `json:"reason"`
}

type HeartbeatPayload struct {
	Status string `json:"status"`
}

// NewEvent builds an audit row with payload encoded as JSON.
func NewEvent(eventType string, ts time.Time, payload any) (*models.AuditEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &models.AuditEvent{
		Ts:        ts.UTC(),
		EventType: eventType,
		Payload:   datatypes.JSON(raw),
	}, nil
}
