package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"guardrail/internal/audit"
	"guardrail/internal/config"
)

const (
	headerAPIToken  = "X-API-Token"
	headerRequestID = "X-Request-ID"
)

// Claims is the bearer token payload accepted by the API.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// VerifyJWT checks an HS256 token against secret.
func VerifyJWT(secret []byte, token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	return *c, nil
}

// SignJWT issues an HS256 token valid for ttl.
func SignJWT(secret []byte, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "guardrail",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// AuthMiddleware protects /api/* with either the static API token or a
// bearer JWT. The alert receiver and infra endpoints stay open.
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	apiToken := strings.TrimSpace(cfg.APIToken)
	secret := []byte(strings.TrimSpace(cfg.JWTSecret))

	return func(c *gin.Context) {
		if cfg.Disabled {
			c.Next()
			return
		}
		p := c.Request.URL.Path
		if !strings.HasPrefix(p, "/api/") || p == "/api/v1/alerts" {
			c.Next()
			return
		}
		if apiToken != "" {
			if got := strings.TrimSpace(c.GetHeader(headerAPIToken)); got != "" &&
				subtle.ConstantTimeCompare([]byte(got), []byte(apiToken)) == 1 {
				c.Next()
				return
			}
		}
		if len(secret) > 0 {
			auth := strings.TrimSpace(c.GetHeader("Authorization"))
			if strings.HasPrefix(auth, "Bearer ") {
				claims, err := VerifyJWT(secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
				if err == nil {
					c.Set("auth_subject", claims.Subject)
					c.Next()
					return
				}
			}
		}
		Error(c, http.StatusUnauthorized, "unauthorized", nil)
		c.Abort()
	}
}

// RequestIDMiddleware propagates or assigns X-Request-ID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(headerRequestID))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("request_id", rid)
		c.Header(headerRequestID, rid)
		c.Next()
	}
}

// AccessLogMiddleware logs each request with zap.
func AccessLogMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if logger == nil {
			return
		}
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

// WriteAuditMiddleware forwards API writes to the remote audit sink.
func WriteAuditMiddleware(f *audit.Forwarder) gin.HandlerFunc {
	if f == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		method := strings.ToUpper(c.Request.Method)
		if !strings.HasPrefix(path, "/api/") {
			return
		}
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return
		}
		status := c.Writer.Status()
		f.Forward("http_write", levelFromStatus(status), map[string]any{
			"method":     method,
			"path":       path,
			"status":     status,
			"duration":   time.Since(start).String(),
			"request_id": c.GetString("request_id"),
		})
	}
}

func levelFromStatus(status int) string {
	if status >= 500 {
		return "error"
	}
	if status >= 400 {
		return "warn"
	}
	return "info"
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-API-Token,X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
