package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"guardrail/internal/risk"
	"guardrail/internal/service"
)

type PlanHandler struct {
	Guardrail *service.GuardrailService
	// DefaultLiquidationBufferRatio fills the snapshot when the caller omits it.
	DefaultLiquidationBufferRatio decimal.Decimal
}

func (h *PlanHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/plans/evaluate", h.evaluate)
}

type evaluateRequest struct {
	Plan    json.RawMessage      `json:"plan"`
	Account risk.AccountSnapshot `json:"account"`
}

// @Summary Evaluate a trade plan against the guardrails
// @Description A rejected plan is a normal 200 response with allowed=false.
// @Tags plans
// @Accept json
// @Produce json
// @Param body body evaluateRequest true "plan and account snapshot"
// @Success 200 {object} risk.Decision
// @Failure 400 {object} apiResponse
// @Failure 503 {object} apiResponse
// @Router /api/v1/plans/evaluate [post]
func (h *PlanHandler) evaluate(c *gin.Context) {
	if h.Guardrail == nil {
		Error(c, http.StatusInternalServerError, "guardrail unavailable", nil)
		return
	}
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	if len(req.Plan) == 0 || string(req.Plan) == "null" {
		Error(c, http.StatusBadRequest, "plan is required", nil)
		return
	}
	snap := req.Account
	if snap.LiquidationBufferRatio.IsZero() {
		snap.LiquidationBufferRatio = h.DefaultLiquidationBufferRatio
	}
	d, err := h.Guardrail.Evaluate(c.Request.Context(), req.Plan, snap)
	if err != nil {
		Error(c, statusForError(err), err.Error(), nil)
		return
	}
	Ok(c, d, nil)
}
