package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"guardrail/internal/repository"
)

type AuditHandler struct {
	Repo repository.Repository
}

func (h *AuditHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/audit-events", h.list)
}

type auditEventItem struct {
	ID        uint64          `json:"id"`
	Ts        time.Time       `json:"ts"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

// @Summary List audit events
// @Tags audit
// @Produce json
// @Param event_type query string false "risk_decision, risk_pause, heartbeat, alertmanager"
// @Param since query string false "RFC3339 lower bound"
// @Param limit query int false "page size" default(50)
// @Param offset query int false "offset" default(0)
// @Success 200 {array} auditEventItem
// @Router /api/v1/audit-events [get]
func (h *AuditHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListAuditEventsParams{
		Limit:     limit,
		Offset:    offset,
		EventType: stringQueryPtr(c, "event_type"),
		Since:     sinceQuery(c),
		OrderBy:   strings.TrimSpace(c.Query("order_by")),
		Asc:       boolPtr(strings.EqualFold(c.Query("order"), "asc")),
	}
	ctx := c.Request.Context()
	rows, err := h.Repo.ListAuditEvents(ctx, params)
	if err != nil {
		Error(c, http.StatusServiceUnavailable, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountAuditEvents(ctx, params)
	if err != nil {
		Error(c, http.StatusServiceUnavailable, err.Error(), nil)
		return
	}
	items := make([]auditEventItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, auditEventItem{
			ID:        row.ID,
			Ts:        row.Ts.UTC(),
			EventType: row.EventType,
			Payload:   json.RawMessage(row.Payload),
		})
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}
