package recorder

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"

	"guardrail/internal/audit"
	"guardrail/internal/models"
	"guardrail/internal/repository"
	"guardrail/internal/risk"
)

// Recorder persists a decision together with its risk_decision audit event.
// Both rows commit or neither does.
type Recorder struct {
	Repo repository.Repository
}

var _ risk.DecisionRecorder = (*Recorder)(nil)

func New(repo repository.Repository) *Recorder {
	return &Recorder{Repo: repo}
}

func (r *Recorder) Record(ctx context.Context, d risk.Decision) error {
	if r == nil || r.Repo == nil {
		return risk.Persistence("record decision", errors.New("repository unavailable"))
	}
	row, err := decisionRow(d)
	if err != nil {
		return risk.Persistence("encode decision", err)
	}
	event, err := audit.NewEvent(audit.EventRiskDecision, d.Timestamp, audit.DecisionPayload{
		PlanID: d.PlanID,
		Status: string(d.Status),
	})
	if err != nil {
		return risk.Persistence("encode audit event", err)
	}
	err = r.Repo.InTx(ctx, func(tx repository.Repository) error {
		if err := tx.InsertRiskDecision(ctx, row); err != nil {
			return err
		}
		return tx.InsertAuditEvent(ctx, event)
	})
	return risk.Persistence("record decision", err)
}

func decisionRow(d risk.Decision) (*models.RiskDecision, error) {
	reasons := d.ReasonStrings()
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return nil, err
	}
	metricsJSON, err := json.Marshal(d.Metrics)
	if err != nil {
		return nil, err
	}
	return &models.RiskDecision{
		DecisionID: d.DecisionID,
		PlanID:     d.PlanID,
		Status:     string(d.Status),
		Allowed:    d.Allowed,
		Reasons:    datatypes.JSON(reasonsJSON),
		Metrics:    datatypes.JSON(metricsJSON),
		Ts:         d.Timestamp.UTC(),
	}, nil
}

// FromRow rebuilds a Decision from its stored row.
func FromRow(row models.RiskDecision) (risk.Decision, error) {
	d := risk.Decision{
		DecisionID: row.DecisionID,
		PlanID:     row.PlanID,
		Timestamp:  row.Ts.UTC(),
		Allowed:    row.Allowed,
		Status:     risk.Status(row.Status),
		Reasons:    []risk.Reason{},
	}
	if len(row.Reasons) > 0 {
		if err := json.Unmarshal(row.Reasons, &d.Reasons); err != nil {
			return risk.Decision{}, err
		}
	}
	if len(row.Metrics) > 0 {
		if err := json.Unmarshal(row.Metrics, &d.Metrics); err != nil {
			return risk.Decision{}, err
		}
	}
	return d, nil
}
