// Package server assembles the FraudSight HTTP API: scoring, account
// and session management, transaction history, and the live feed.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/aberkane/fraudsight/internal/config"
	"github.com/aberkane/fraudsight/internal/health"
	"github.com/aberkane/fraudsight/internal/idgen"
	"github.com/aberkane/fraudsight/internal/logging"
	"github.com/aberkane/fraudsight/internal/metrics"
	"github.com/aberkane/fraudsight/internal/model"
	"github.com/aberkane/fraudsight/internal/predict"
	"github.com/aberkane/fraudsight/internal/ratelimit"
	"github.com/aberkane/fraudsight/internal/realtime"
	"github.com/aberkane/fraudsight/internal/retry"
	"github.com/aberkane/fraudsight/internal/scoring"
	"github.com/aberkane/fraudsight/internal/security"
	"github.com/aberkane/fraudsight/internal/session"
	"github.com/aberkane/fraudsight/internal/traces"
	"github.com/aberkane/fraudsight/internal/transactions"
	"github.com/aberkane/fraudsight/internal/users"
	"github.com/aberkane/fraudsight/internal/validation"
)

// Server owns the router and every long-lived dependency behind it.
type Server struct {
	cfg          *config.Config
	modelHandle  *model.Handle
	userStore    users.Store
	sessionMgr   *session.Manager
	txStore      transactions.Store
	predictSvc   *predict.Service
	realtimeHub  *realtime.Hub
	rateLimiter  *ratelimit.Limiter
	healthChecks *health.Registry
	stopTracing  func(context.Context) error
	db           *sql.DB // nil when running on in-memory stores
	router       *gin.Engine
	httpSrv      *http.Server
	logger       *slog.Logger
	cancelRunCtx context.CancelFunc

	ready   atomic.Bool
	healthy atomic.Bool
}

// Option adjusts construction.
type Option func(*Server)

// WithLogger replaces the logger built from config.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithModelHandle injects a pre-built model handle. Tests use this to
// score against known coefficients without artifact files.
func WithModelHandle(h *model.Handle) Option {
	return func(s *Server) { s.modelHandle = h }
}

// New wires the full service. Postgres is used when DATABASE_URL is
// set, in-memory stores otherwise; missing model artifacts degrade
// scoring rather than failing startup.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()
	if err := s.initStores(ctx); err != nil {
		return nil, err
	}
	s.initModel()

	s.realtimeHub = realtime.NewHub(s.logger)
	s.predictSvc = predict.NewService(scoring.NewAdapterFromHandle(s.modelHandle), s.txStore, s.realtimeHub)
	s.predictSvc.SetAmountBounds(cfg.MinTransactionAmount, cfg.MaxTransactionAmount)

	s.healthChecks = health.NewRegistry()
	if s.db != nil {
		s.healthChecks.Register("database", health.DBChecker(s.db))
	}
	s.healthChecks.Register("scaler", health.ArtifactChecker("scaler", s.modelHandle.ScalerLoaded))
	s.healthChecks.Register("classifier", health.ArtifactChecker("classifier", s.modelHandle.ClassifierLoaded))

	stopTracing, err := traces.Init(ctx, cfg.OTLPEndpoint, s.logger)
	if err != nil {
		s.logger.Warn("failed to initialize tracing", "error", err)
	} else {
		s.stopTracing = stopTracing
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	s.router = gin.New()
	s.installMiddleware()
	s.registerRoutes()

	s.healthy.Store(true)
	return s, nil
}

// initStores connects Postgres and migrates the schema, or falls back
// to in-memory stores when no DATABASE_URL is configured.
func (s *Server) initStores(ctx context.Context) error {
	if s.cfg.DatabaseURL == "" {
		s.logger.Info("using in-memory storage (data will not persist)")
		s.userStore = users.NewMemoryStore()
		s.sessionMgr = session.NewManager(session.NewMemoryStore(), s.cfg.SessionLifetime)
		s.txStore = transactions.NewMemoryStore()
		return nil
	}

	db, err := sql.Open("postgres", s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// The database may still be coming up alongside us.
	if err := retry.Do(ctx, 5, 500*time.Millisecond, db.Ping); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	s.db = db
	s.logger.Info("using PostgreSQL storage", "url", maskDSN(s.cfg.DatabaseURL))

	userStore := users.NewPostgresStore(db)
	if err := userStore.Migrate(ctx); err != nil {
		s.logger.Warn("failed to migrate user store", "error", err)
	}
	s.userStore = userStore

	sessionStore := session.NewPostgresStore(db)
	if err := sessionStore.Migrate(ctx); err != nil {
		s.logger.Warn("failed to migrate session store", "error", err)
	}
	s.sessionMgr = session.NewManager(sessionStore, s.cfg.SessionLifetime)

	txStore := transactions.NewPostgresStore(db)
	if err := txStore.Migrate(ctx); err != nil {
		s.logger.Warn("failed to migrate transaction store", "error", err)
	}
	s.txStore = txStore
	return nil
}

func (s *Server) initModel() {
	if s.modelHandle == nil {
		s.modelHandle = model.Load(s.cfg.ScalerPath, s.cfg.ModelPath, s.logger)
	}
	if s.modelHandle.Available() {
		metrics.ModelLoaded.Set(1)
		return
	}
	metrics.ModelLoaded.Set(0)
	s.logger.Warn("model artifacts not fully loaded, predictions unavailable",
		"scaler_loaded", s.modelHandle.ScalerLoaded(),
		"classifier_loaded", s.modelHandle.ClassifierLoaded(),
	)
}

// maskDSN hides the password in a connection string for logging.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

func (s *Server) installMiddleware() {
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "an unexpected error occurred",
		})
	}))

	s.router.Use(security.HeadersMiddleware())
	// TODO: make origins configurable once the dashboard moves off the API host.
	s.router.Use(security.CORSMiddleware([]string{"*"}))
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	rlCfg := ratelimit.DefaultConfig()
	if s.cfg.RateLimitRPM > 0 {
		rlCfg.RequestsPerMinute = s.cfg.RateLimitRPM
	}
	s.rateLimiter = ratelimit.New(rlCfg)
	s.router.Use(s.rateLimiter.Middleware())

	s.router.Use(metrics.Middleware())
	s.router.Use(s.requestContextMiddleware())
	s.router.Use(s.accessLogMiddleware())
}

// requestContextMiddleware propagates the request ID (incoming or
// freshly minted) and the server logger through the request context.
func (s *Server) requestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = idgen.Hex(16)
		}

		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(logging.WithLogger(ctx, s.logger))
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}

		logger := logging.L(c.Request.Context())
		switch {
		case status >= 500:
			logger.Error("request completed", append(attrs, "client_ip", c.ClientIP())...)
		case status >= 400:
			logger.Warn("request completed", attrs...)
		default:
			logger.Info("request completed", attrs...)
		}
	}
}

func (s *Server) registerRoutes() {
	// Probes and metrics.
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// Browser pages and the feed socket.
	s.router.GET("/", dashboardHandler)
	s.router.GET("/feed", feedPageHandler)
	s.router.GET("/ws", func(c *gin.Context) {
		s.realtimeHub.HandleWebSocket(c.Writer, c.Request)
	})

	predictHandler := predict.NewHandler(s.predictSvc, s.modelHandle)
	authHandler := session.NewHandler(s.sessionMgr, s.userStore, s.cfg.SessionSecure)
	txHandler := transactions.NewHandler(s.txStore, s.cfg.PageSize)
	txHandler.SetDailyWindow(s.cfg.DailyStatsWindow)

	api := s.router.Group("/api")
	api.Use(session.Middleware(s.sessionMgr, s.userStore))

	// Open to anonymous clients.
	api.GET("/health", predictHandler.Health)
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	// Everything else needs a logged-in user.
	protected := api.Group("")
	protected.Use(session.RequireUser())
	{
		protected.POST("/predict", predictHandler.Predict)
		protected.POST("/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)
		txHandler.RegisterRoutes(protected)
	}
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	Checks    []health.Status `json:"checks,omitempty"`
	Timestamp string          `json:"timestamp"`
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	healthy, checks := s.healthChecks.CheckAll(ctx)

	status, httpStatus := "healthy", http.StatusOK
	if !healthy {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Version:   "0.1.0",
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Run serves until a signal arrives, the context is cancelled, or the
// listener fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"port", s.cfg.Port,
			"model_loaded", s.modelHandle.Available(),
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go s.realtimeHub.Run(runCtx)
	if s.db != nil {
		go metrics.StartDBStatsCollector(runCtx, s.db, 15*time.Second)
	}

	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown drains in-flight requests and releases everything Run
// started.
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	// Let load balancers observe the failing readiness probe before the
	// listener closes.
	time.Sleep(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.stopTracing != nil {
		if err := s.stopTracing(ctx); err != nil {
			s.logger.Error("tracing shutdown error", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
