package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardrail/internal/config"
	"guardrail/internal/db"
	"guardrail/internal/governor"
	"guardrail/internal/repository"
	gormrepository "guardrail/internal/repository/gorm"
	"guardrail/internal/risk"
	"guardrail/internal/service"
)

const (
	testToken  = "test-token"
	testSecret = "test-secret"
)

const compliantPlan = `{
  "meta": {"plan_id": "plan-1", "symbol": "BTCUSDT", "market_type": "perp"},
  "entry": {"price_range": [100, 101]},
  "risk": {"stop_loss": 98, "max_loss_pct": 0.02, "risk_budget_pct": 0.01},
  "sizing": {"leverage": 5, "notional_usd": 10000}
}`

const healthyAccount = `{"equity": 100000, "peak_equity": 100000, "net_exposure_pct": 0.1}`

type testEnv struct {
	router *gin.Engine
	repo   *gormrepository.Store
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn, err := db.Open(config.DBConfig{
		Driver: db.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "handler.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	require.NoError(t, db.AutoMigrate(conn))

	repo := gormrepository.New(conn.Gorm)
	cfg := config.Default()
	cfg.Auth = config.AuthConfig{APIToken: testToken, JWTSecret: testSecret}
	gov := &governor.Governor{Repo: repo}
	router := NewRouter(RouterDeps{
		Config:   cfg,
		DB:       conn,
		Repo:     repo,
		Governor: gov,
		Guardrail: &service.GuardrailService{
			Repo:      repo,
			Evaluator: &risk.Evaluator{Thresholds: risk.DefaultThresholds()},
		},
	})
	return testEnv{router: router, repo: repo}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

func (e testEnv) do(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func authed() map[string]string {
	return map[string]string{headerAPIToken: testToken}
}

func TestHealthIsPublic(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = env.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = env.do(t, http.MethodGet, "/docs", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, http.MethodGet, "/api/v1/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/status", "", map[string]string{headerAPIToken: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/status", "", authed())
	assert.Equal(t, http.StatusOK, w.Code)

	token, err := SignJWT([]byte(testSecret), "ops", "admin", time.Minute)
	require.NoError(t, err)
	w, _ = env.do(t, http.MethodGet, "/api/v1/status", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)

	other, err := SignJWT([]byte("other-secret"), "ops", "admin", time.Minute)
	require.NoError(t, err)
	w, _ = env.do(t, http.MethodGet, "/api/v1/status", "", map[string]string{"Authorization": "Bearer " + other})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPauseResumeFlow(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/api/v1/status", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"risk_state":{"paused":false,"reason":null},"mode":"NORMAL"}`, string(body.Data))

	w, body = env.do(t, http.MethodPost, "/api/v1/risk/pause?reason=manual", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"paused":true,"reason":"manual"}`, string(body.Data))

	w, body = env.do(t, http.MethodGet, "/api/v1/status", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"risk_state":{"paused":true,"reason":"manual"},"mode":"LOCKDOWN"}`, string(body.Data))

	w, body = env.do(t, http.MethodPost, "/api/v1/risk/resume", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"paused":false,"reason":null}`, string(body.Data))

	w, body = env.do(t, http.MethodPost, "/api/v1/risk/pause", `{"reason":"drawdown"}`, authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"paused":true,"reason":"drawdown"}`, string(body.Data))

	w, body = env.do(t, http.MethodGet, "/api/v1/risk/history?limit=10", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	var history []governor.State
	require.NoError(t, json.Unmarshal(body.Data, &history))
	require.Len(t, history, 4)
	assert.True(t, history[0].Paused)
	assert.EqualValues(t, 4, body.Meta["total"])
}

func TestEvaluateEndpoint(t *testing.T) {
	env := newTestEnv(t)

	req := `{"plan":` + compliantPlan + `,"account":` + healthyAccount + `}`
	w, body := env.do(t, http.MethodPost, "/api/v1/plans/evaluate", req, authed())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var d risk.Decision
	require.NoError(t, json.Unmarshal(body.Data, &d))
	assert.True(t, d.Allowed)
	assert.Equal(t, risk.StatusApproved, d.Status)
	assert.Equal(t, "43478.26", d.Metrics.NotionalLimit.StringFixed(2))

	w, body = env.do(t, http.MethodGet, "/api/v1/risk/decisions/"+d.DecisionID, "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	var stored risk.Decision
	require.NoError(t, json.Unmarshal(body.Data, &stored))
	assert.Equal(t, d.DecisionID, stored.DecisionID)

	w, body = env.do(t, http.MethodGet, "/api/v1/risk/decisions?plan_id=plan-1", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body.Meta["total"])

	w, _ = env.do(t, http.MethodGet, "/api/v1/risk/decisions/missing", "", authed())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvaluateEndpoint_LockdownAndMalformed(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, http.MethodPost, "/api/v1/risk/pause?reason=ops", "", authed())
	require.Equal(t, http.StatusOK, w.Code)

	req := `{"plan":` + compliantPlan + `,"account":` + healthyAccount + `}`
	w, body := env.do(t, http.MethodPost, "/api/v1/plans/evaluate", req, authed())
	require.Equal(t, http.StatusOK, w.Code)
	var d risk.Decision
	require.NoError(t, json.Unmarshal(body.Data, &d))
	assert.False(t, d.Allowed)
	assert.Equal(t, []risk.Reason{risk.ReasonLockdown}, d.Reasons)

	w, _ = env.do(t, http.MethodPost, "/api/v1/plans/evaluate", `{"plan":{"meta":{}},"account":{}}`, authed())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/v1/plans/evaluate", `{"account":{}}`, authed())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	total, err := env.repo.CountRiskDecisions(context.Background(), repository.ListRiskDecisionsParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestEvaluateEndpoint_GovernorState(t *testing.T) {
	env := newTestEnv(t)

	account := `{"equity": 100000, "peak_equity": 100000, "net_exposure_pct": 0.1, "governor_state": "lockdown"}`
	w, body := env.do(t, http.MethodPost, "/api/v1/plans/evaluate", `{"plan":`+compliantPlan+`,"account":`+account+`}`, authed())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var d risk.Decision
	require.NoError(t, json.Unmarshal(body.Data, &d))
	assert.False(t, d.Allowed)
	assert.Equal(t, []risk.Reason{risk.ReasonLockdown}, d.Reasons)

	for _, account := range []string{
		`{"equity": 100000, "governor_state": "bogus"}`,
		`{"equity": 100000, "governor_state": "PAUSED"}`,
		`{"equity": 100000, "open_positions": -1}`,
		`{"equity": -1}`,
	} {
		w, _ = env.do(t, http.MethodPost, "/api/v1/plans/evaluate", `{"plan":`+compliantPlan+`,"account":`+account+`}`, authed())
		assert.Equal(t, http.StatusBadRequest, w.Code, account)
	}

	total, err := env.repo.CountRiskDecisions(context.Background(), repository.ListRiskDecisionsParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestAlertsAndAuditEvents(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodPost, "/api/v1/alerts", `{"status":"firing","alerts":[{"labels":{"alertname":"HighDrawdown"}}]}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":1}`, string(body.Data))

	w, _ = env.do(t, http.MethodPost, "/api/v1/alerts", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = env.do(t, http.MethodGet, "/api/v1/audit-events?event_type=alertmanager", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	var items []auditEventItem
	require.NoError(t, json.Unmarshal(body.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "alertmanager", items[0].EventType)
	assert.Equal(t, "firing", gjsonString(t, items[0].Payload, "status"))
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, http.MethodGet, "/healthz", "", map[string]string{headerRequestID: "abc"})
	assert.Equal(t, "abc", w.Header().Get(headerRequestID))
	w, _ = env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func gjsonString(t *testing.T, raw json.RawMessage, key string) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	s, _ := m[key].(string)
	return s
}
