package models

import (
	"time"

	"gorm.io/datatypes"
)

// RiskDecision is the persisted outcome of one guardrail evaluation.
// Rows are written once and never updated.
type RiskDecision struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	DecisionID string `gorm:"type:varchar(26);not null;uniqueIndex"`
	PlanID     string `gorm:"type:varchar(128);not null;index"`
	Status     string `gorm:"type:varchar(16);not null;index"`
	Allowed    bool   `gorm:"not null"`

	// Reasons is an ordered JSON array of reason codes.
	Reasons datatypes.JSON `gorm:"type:jsonb;not null"`
	// Metrics holds equity, drawdown, notional_limit and risk_budget_pct.
	Metrics datatypes.JSON `gorm:"type:jsonb;not null"`

	Ts        time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (RiskDecision) TableName() string {
	return "risk_decisions"
}
