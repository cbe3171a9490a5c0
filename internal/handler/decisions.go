package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"guardrail/internal/recorder"
	"guardrail/internal/repository"
	"guardrail/internal/risk"
)

type DecisionHandler struct {
	Repo repository.Repository
}

func (h *DecisionHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/risk/decisions")
	group.GET("", h.list)
	group.GET("/:id", h.get)
}

// @Summary List recorded decisions
// @Tags decisions
// @Produce json
// @Param plan_id query string false "plan id"
// @Param status query string false "APPROVED or REJECTED"
// @Param since query string false "RFC3339 lower bound"
// @Param limit query int false "page size" default(50)
// @Param offset query int false "offset" default(0)
// @Success 200 {array} risk.Decision
// @Router /api/v1/risk/decisions [get]
func (h *DecisionHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListRiskDecisionsParams{
		Limit:   limit,
		Offset:  offset,
		PlanID:  stringQueryPtr(c, "plan_id"),
		Status:  stringQueryPtr(c, "status"),
		Since:   sinceQuery(c),
		OrderBy: strings.TrimSpace(c.Query("order_by")),
		Asc:     boolPtr(strings.EqualFold(c.Query("order"), "asc")),
	}
	ctx := c.Request.Context()
	rows, err := h.Repo.ListRiskDecisions(ctx, params)
	if err != nil {
		Error(c, http.StatusServiceUnavailable, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountRiskDecisions(ctx, params)
	if err != nil {
		Error(c, http.StatusServiceUnavailable, err.Error(), nil)
		return
	}
	items := make([]risk.Decision, 0, len(rows))
	for _, row := range rows {
		d, err := recorder.FromRow(row)
		if err != nil {
			Error(c, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		items = append(items, d)
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Get one decision
// @Tags decisions
// @Produce json
// @Param id path string true "decision id"
// @Success 200 {object} risk.Decision
// @Failure 404 {object} apiResponse
// @Router /api/v1/risk/decisions/{id} [get]
func (h *DecisionHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	row, err := h.Repo.GetRiskDecision(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, http.StatusServiceUnavailable, err.Error(), nil)
		return
	}
	if row == nil {
		Error(c, http.StatusNotFound, "decision not found", nil)
		return
	}
	d, err := recorder.FromRow(*row)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, d, nil)
}
