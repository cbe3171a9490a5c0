package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"guardrail/internal/audit"
	"guardrail/internal/models"
	"guardrail/internal/repository"
)

const maxAlertBody = 1 << 20

// AlertHandler receives alertmanager webhooks and keeps them in the audit log.
type AlertHandler struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (h *AlertHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/alerts", h.receive)
}

// @Summary Alertmanager webhook receiver
// @Tags alerts
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} apiResponse
// @Router /api/v1/alerts [post]
func (h *AlertHandler) receive(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAlertBody))
	if err != nil {
		Error(c, http.StatusBadRequest, "read body failed", nil)
		return
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		Error(c, http.StatusBadRequest, "body must be a JSON object", nil)
		return
	}
	doc := gjson.ParseBytes(body)
	event := &models.AuditEvent{
		Ts:        time.Now().UTC(),
		EventType: audit.EventAlertmanager,
		Payload:   datatypes.JSON(body),
	}
	if err := h.Repo.InsertAuditEvent(c.Request.Context(), event); err != nil {
		Error(c, http.StatusServiceUnavailable, err.Error(), nil)
		return
	}
	if h.Logger != nil {
		h.Logger.Info("alertmanager webhook received",
			zap.String("status", doc.Get("status").String()),
			zap.Int64("alerts", doc.Get("alerts.#").Int()),
		)
	}
	Ok(c, gin.H{"received": doc.Get("alerts.#").Int()}, nil)
}
