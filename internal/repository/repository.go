package repository

import (
	"context"
	"time"

	"guardrail/internal/models"
)

// Repository is the storage surface of the guardrail service. Decision,
// governor and audit records are insert-only: there is no update or delete.
type Repository interface {
	// InTx runs fn against a transaction-bound Repository. Calling InTx on a
	// transaction-bound Repository opens a nested savepoint.
	InTx(ctx context.Context, fn func(tx Repository) error) error

	// Risk decisions.
	InsertRiskDecision(ctx context.Context, item *models.RiskDecision) error
	GetRiskDecision(ctx context.Context, decisionID string) (*models.RiskDecision, error)
	ListRiskDecisions(ctx context.Context, params ListRiskDecisionsParams) ([]models.RiskDecision, error)
	CountRiskDecisions(ctx context.Context, params ListRiskDecisionsParams) (int64, error)

	// Governor log.
	LockRiskState(ctx context.Context) error
	LatestRiskState(ctx context.Context) (*models.RiskState, error)
	AppendRiskState(ctx context.Context, item *models.RiskState) error
	ListRiskStates(ctx context.Context, params ListRiskStatesParams) ([]models.RiskState, error)
	CountRiskStates(ctx context.Context, params ListRiskStatesParams) (int64, error)

	// Audit events.
	InsertAuditEvent(ctx context.Context, item *models.AuditEvent) error
	ListAuditEvents(ctx context.Context, params ListAuditEventsParams) ([]models.AuditEvent, error)
	CountAuditEvents(ctx context.Context, params ListAuditEventsParams) (int64, error)
}

type ListRiskDecisionsParams struct {
	Limit   int
	Offset  int
	PlanID  *string
	Status  *string
	Since   *time.Time
	OrderBy string
	Asc     *bool
}

type ListRiskStatesParams struct {
	Limit  int
	Offset int
	Paused *bool
	Asc    *bool
}

type ListAuditEventsParams struct {
	Limit     int
	Offset    int
	EventType *string
	Since     *time.Time
	OrderBy   string
	Asc       *bool
}
