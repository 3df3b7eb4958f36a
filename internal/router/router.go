package router

import (
	"time"

	"cashdesk/internal/config"
	"cashdesk/internal/handler"
	"cashdesk/internal/infra"
	"cashdesk/internal/middleware"
	"cashdesk/internal/model"
	"cashdesk/internal/repository"
	"cashdesk/internal/service"
	"cashdesk/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps bundles the externally-constructed pieces the router wires together.
// The worker pool is returned so main can start it with its own context.
type Deps struct {
	Engine *gin.Engine
	Pool   *worker.Pool
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, loc *time.Location) *Deps {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)
	bus := infra.NewEventBus(rdb)
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	sessionSvc := service.NewSessionService(sessionRepo, ledgerRepo, loc, bus, dispatcher)
	ledgerSvc := service.NewLedgerService(ledgerRepo, sessionRepo, loc, bus)
	saleSvc := service.NewSaleService(db, saleRepo, counterRepo, ledgerRepo, sessionRepo, loc, bus)
	importSvc := service.NewImportService(sessionSvc, ledgerSvc, loc)

	// ── Workers ──────────────────────────────────────────────────────────────
	reportWorker := worker.NewReportWorker(sessionSvc, ledgerSvc, dispatcher, cfg.ReportStoragePath, cfg.ReportEmail)
	emailWorker := worker.NewEmailWorker(mailer)
	pool := worker.NewPool(rdb, reportWorker, emailWorker)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	cashH := handler.NewCashHandler(sessionSvc, loc)
	ledgerH := handler.NewLedgerHandler(ledgerSvc, loc)
	salesH := handler.NewSalesHandler(saleSvc)
	importH := handler.NewImportHandler(importSvc)
	streamH := handler.NewStreamHandler(bus)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleCashier, model.RoleSupervisor, model.RoleAdmin)
	elevated := middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		cash := v1.Group("/cash")
		{
			cash.GET("/proposal", anyRole, cashH.Proposal)
			cash.POST("/open", anyRole, cashH.Open)
			cash.POST("/close", anyRole, cashH.Close)
			cash.POST("/:date/reopen", adminOnly, cashH.Reopen)
			cash.GET("/:date/report", anyRole, cashH.Report)
			cash.GET("/history", elevated, cashH.History)
		}

		v1.POST("/entries", anyRole, ledgerH.Append)
		v1.GET("/entries", anyRole, ledgerH.List)
		v1.PUT("/entries/:id", elevated, ledgerH.Update)
		v1.DELETE("/entries/:id", elevated, ledgerH.Remove)

		v1.POST("/sales", anyRole, salesH.Create)
		v1.GET("/sales", anyRole, salesH.List)
		v1.GET("/sales/:id", anyRole, salesH.Get)
		v1.POST("/sales/:id/payments", anyRole, salesH.AddPayment)

		v1.POST("/import", adminOnly, importH.Import)

		// Live cash event stream (SSE over Redis pub/sub)
		v1.GET("/stream", anyRole, streamH.Events)

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.PUT("/:id", authH.UpdateUser)
			users.DELETE("/:id", authH.DeactivateUser)
			users.PATCH("/:id/reactivate", authH.ReactivateUser)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return &Deps{Engine: r, Pool: pool}
}
