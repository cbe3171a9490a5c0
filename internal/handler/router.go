package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"guardrail/internal/audit"
	"guardrail/internal/config"
	"guardrail/internal/db"
	"guardrail/internal/governor"
	"guardrail/internal/metrics"
	"guardrail/internal/repository"
	"guardrail/internal/service"
)

type RouterDeps struct {
	Config    config.Config
	DB        *db.DB
	Repo      repository.Repository
	Governor  *governor.Governor
	Guardrail *service.GuardrailService
	Forwarder *audit.Forwarder
	Logger    *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(AccessLogMiddleware(deps.Logger))
	router.Use(AuthMiddleware(deps.Config.Auth))
	router.Use(WriteAuditMiddleware(deps.Forwarder))

	(&HealthHandler{DB: deps.DB}).Register(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	RegisterDocs(router)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	(&RiskHandler{Governor: deps.Governor}).Register(router)
	(&PlanHandler{
		Guardrail:                     deps.Guardrail,
		DefaultLiquidationBufferRatio: decimal.NewFromFloat(deps.Config.Risk.LiquidationBufferRatio),
	}).Register(router)
	(&DecisionHandler{Repo: deps.Repo}).Register(router)
	(&AuditHandler{Repo: deps.Repo}).Register(router)
	(&AlertHandler{Repo: deps.Repo, Logger: deps.Logger}).Register(router)
	return router
}
