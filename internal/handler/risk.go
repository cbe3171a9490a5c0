package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"guardrail/internal/governor"
	"guardrail/internal/risk"
)

type RiskHandler struct {
	Governor *governor.Governor
}

func (h *RiskHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/status", h.status)
	group := r.Group("/api/v1/risk")
	group.POST("/pause", h.pause)
	group.POST("/resume", h.resume)
	group.GET("/history", h.history)
}

type riskStateItem struct {
	Paused bool    `json:"paused"`
	Reason *string `json:"reason"`
}

type statusResponse struct {
	RiskState riskStateItem `json:"risk_state"`
	Mode      risk.Mode     `json:"mode"`
}

type pauseRequest struct {
	Reason string `json:"reason"`
}

// @Summary Current governor state
// @Tags risk
// @Produce json
// @Success 200 {object} statusResponse
// @Router /api/v1/status [get]
func (h *RiskHandler) status(c *gin.Context) {
	if h.Governor == nil {
		Error(c, http.StatusInternalServerError, "governor unavailable", nil)
		return
	}
	st, err := h.Governor.CurrentState(c.Request.Context())
	if err != nil {
		Error(c, statusForError(err), err.Error(), nil)
		return
	}
	Ok(c, statusResponse{
		RiskState: riskStateItem{Paused: st.Paused, Reason: st.Reason},
		Mode:      st.Mode(),
	}, nil)
}

// @Summary Pause trading (lockdown)
// @Tags risk
// @Accept json
// @Produce json
// @Param reason query string false "pause reason"
// @Param body body pauseRequest false "pause reason"
// @Success 200 {object} riskStateItem
// @Router /api/v1/risk/pause [post]
func (h *RiskHandler) pause(c *gin.Context) {
	if h.Governor == nil {
		Error(c, http.StatusInternalServerError, "governor unavailable", nil)
		return
	}
	reason := strings.TrimSpace(c.Query("reason"))
	if reason == "" && c.Request.ContentLength != 0 {
		var req pauseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, http.StatusBadRequest, "invalid body", nil)
			return
		}
		reason = strings.TrimSpace(req.Reason)
	}
	st, err := h.Governor.Pause(c.Request.Context(), reason)
	if err != nil {
		Error(c, statusForError(err), err.Error(), nil)
		return
	}
	Ok(c, riskStateItem{Paused: st.Paused, Reason: st.Reason}, nil)
}

// @Summary Resume trading
// @Tags risk
// @Produce json
// @Success 200 {object} riskStateItem
// @Router /api/v1/risk/resume [post]
func (h *RiskHandler) resume(c *gin.Context) {
	if h.Governor == nil {
		Error(c, http.StatusInternalServerError, "governor unavailable", nil)
		return
	}
	st, err := h.Governor.Resume(c.Request.Context())
	if err != nil {
		Error(c, statusForError(err), err.Error(), nil)
		return
	}
	Ok(c, riskStateItem{Paused: st.Paused, Reason: st.Reason}, nil)
}

// @Summary Governor history (newest first)
// @Tags risk
// @Produce json
// @Param limit query int false "page size" default(50)
// @Param offset query int false "offset" default(0)
// @Success 200 {array} governor.State
// @Router /api/v1/risk/history [get]
func (h *RiskHandler) history(c *gin.Context) {
	if h.Governor == nil {
		Error(c, http.StatusInternalServerError, "governor unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	items, total, err := h.Governor.History(c.Request.Context(), limit, offset)
	if err != nil {
		Error(c, statusForError(err), err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, risk.ErrMalformedPlan), errors.Is(err, risk.ErrInvalidSnapshot):
		return http.StatusBadRequest
	case errors.Is(err, risk.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
