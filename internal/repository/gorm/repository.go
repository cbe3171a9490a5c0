package gormrepository

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"guardrail/internal/models"
	"guardrail/internal/repository"
)

// riskStateLockKey is the postgres advisory lock guarding governor writes.
const riskStateLockKey int64 = 0x6775617264 // "guard"

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ repository.Repository = (*Store)(nil)

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Repository) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// --- risk decisions ----------------------------------------------------------

func (s *Store) InsertRiskDecision(ctx context.Context, item *models.RiskDecision) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetRiskDecision(ctx context.Context, decisionID string) (*models.RiskDecision, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	decisionID = strings.TrimSpace(decisionID)
	if decisionID == "" {
		return nil, nil
	}
	var item models.RiskDecision
	err := s.db.WithContext(ctx).Where("decision_id = ?", decisionID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListRiskDecisions(ctx context.Context, params repository.ListRiskDecisionsParams) ([]models.RiskDecision, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.riskDecisionQuery(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "id", riskDecisionColumns)
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.RiskDecision
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountRiskDecisions(ctx context.Context, params repository.ListRiskDecisionsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.riskDecisionQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) riskDecisionQuery(ctx context.Context, params repository.ListRiskDecisionsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.RiskDecision{})
	if params.PlanID != nil && strings.TrimSpace(*params.PlanID) != "" {
		query = query.Where("plan_id = ?", strings.TrimSpace(*params.PlanID))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.ToUpper(strings.TrimSpace(*params.Status)))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("ts >= ?", *params.Since)
	}
	return query
}

// --- governor log ------------------------------------------------------------

// LockRiskState serialises governor writers on postgres for the lifetime of
// the surrounding transaction. sqlite runs on a single connection, so the
// transaction itself is already exclusive there.
func (s *Store) LockRiskState(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.db.Dialector == nil || s.db.Dialector.Name() != "postgres" {
		return nil
	}
	return s.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", riskStateLockKey).Error
}

func (s *Store) LatestRiskState(ctx context.Context) (*models.RiskState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.RiskState
	err := s.db.WithContext(ctx).Model(&models.RiskState{}).Order("id desc").Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) AppendRiskState(ctx context.Context, item *models.RiskState) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.Reason != nil && len(*item.Reason) > models.RiskStateReasonMaxLen {
		trimmed := truncateUTF8(*item.Reason, models.RiskStateReasonMaxLen)
		item.Reason = &trimmed
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListRiskStates(ctx context.Context, params repository.ListRiskStatesParams) ([]models.RiskState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.riskStateQuery(ctx, params)
	query = applyOrder(query, "id", params.Asc, "id", riskStateColumns)
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.RiskState
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountRiskStates(ctx context.Context, params repository.ListRiskStatesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.riskStateQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) riskStateQuery(ctx context.Context, params repository.ListRiskStatesParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.RiskState{})
	if params.Paused != nil {
		query = query.Where("paused = ?", *params.Paused)
	}
	return query
}

// --- audit events ------------------------------------------------------------

func (s *Store) InsertAuditEvent(ctx context.Context, item *models.AuditEvent) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListAuditEvents(ctx context.Context, params repository.ListAuditEventsParams) ([]models.AuditEvent, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.auditEventQuery(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "id", auditEventColumns)
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.AuditEvent
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountAuditEvents(ctx context.Context, params repository.ListAuditEventsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.auditEventQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) auditEventQuery(ctx context.Context, params repository.ListAuditEventsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.AuditEvent{})
	if params.EventType != nil && strings.TrimSpace(*params.EventType) != "" {
		query = query.Where("event_type = ?", strings.TrimSpace(*params.EventType))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("ts >= ?", *params.Since)
	}
	return query
}

// --- helpers -----------------------------------------------------------------

var (
	riskDecisionColumns = map[string]struct{}{"id": {}, "ts": {}, "plan_id": {}, "status": {}}
	riskStateColumns    = map[string]struct{}{"id": {}, "ts": {}}
	auditEventColumns   = map[string]struct{}{"id": {}, "ts": {}, "event_type": {}}
)

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string, allowed map[string]struct{}) *gorm.DB {
	column := strings.ToLower(strings.TrimSpace(orderBy))
	if _, ok := allowed[column]; !ok {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	order := column + " " + direction
	if column != "id" {
		order += ", id " + direction
	}
	return query.Order(order)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// truncateUTF8 cuts s to at most maxBytes without splitting a rune.
func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
