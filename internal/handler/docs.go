package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Guardrail Service

Decides whether a proposed trade plan may proceed and owns the global
trading pause (lockdown).

## Auth

/api/* routes require either X-API-Token or "Authorization: Bearer <jwt>"
(HS256). /api/v1/alerts, health, metrics and docs are public.

## Routes

- GET  /healthz
- GET  /readyz
- GET  /metrics
- GET  /swagger/index.html
- GET  /api/v1/status
- POST /api/v1/risk/pause?reason=...
- POST /api/v1/risk/resume
- GET  /api/v1/risk/history
- POST /api/v1/plans/evaluate
- GET  /api/v1/risk/decisions
- GET  /api/v1/risk/decisions/:id
- GET  /api/v1/audit-events
- POST /api/v1/alerts

## Evaluate

POST /api/v1/plans/evaluate with {"plan": {...}, "account": {...}}.
A rejected plan is a normal 200 response with "allowed": false and the
violated reasons. 400 means the plan is malformed and nothing was
recorded. 503 means the decision could not be recorded and must not be
acted on.
`)
	})
}
