package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/tourbill/internal/config"
	guidedomain "github.com/smallbiznis/tourbill/internal/guide/domain"
	"github.com/smallbiznis/tourbill/internal/observability"
	obslogger "github.com/smallbiznis/tourbill/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/tourbill/internal/observability/metrics"
	obstracing "github.com/smallbiznis/tourbill/internal/observability/tracing"
	productdomain "github.com/smallbiznis/tourbill/internal/product/domain"
	"github.com/smallbiznis/tourbill/internal/ratelimit"
	reportingdomain "github.com/smallbiznis/tourbill/internal/reporting/domain"
	visitdomain "github.com/smallbiznis/tourbill/internal/visit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, log *zap.Logger) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		Base:            log,
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, log *zap.Logger) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, log)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	guideSvc     guidedomain.Service
	productSvc   productdomain.Service
	visitSvc     visitdomain.Service
	reportSvc    reportingdomain.Service
	reportingCfg *config.ReportingConfigHolder
	writeLimiter ratelimit.Limiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	GuideSvc     guidedomain.Service
	ProductSvc   productdomain.Service
	VisitSvc     visitdomain.Service
	ReportSvc    reportingdomain.Service
	ReportingCfg *config.ReportingConfigHolder
	WriteLimiter *ratelimit.WriteLimiter `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		guideSvc:     p.GuideSvc,
		productSvc:   p.ProductSvc,
		visitSvc:     p.VisitSvc,
		reportSvc:    p.ReportSvc,
		reportingCfg: p.ReportingCfg,
		obsMetrics:   p.ObsMetrics,
	}
	if p.WriteLimiter.Enabled() {
		svc.writeLimiter = p.WriteLimiter
	}

	svc.registerRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/", s.APIKeyRequired())
	write := s.WriteRateLimit()

	// -------- Guides --------
	api.POST("/guides", write, s.CreateGuide)
	api.GET("/guides", s.ListGuides)
	api.GET("/guides/:id", s.GetGuideByID)
	api.PUT("/guides/:id", write, s.UpdateGuide)
	api.DELETE("/guides/:id", write, s.DeactivateGuide)

	// -------- Products --------
	api.POST("/products", write, s.CreateProduct)
	api.GET("/products", s.ListProducts)
	api.GET("/products/ranking", s.RankProducts)
	api.GET("/products/:id", s.GetProductByID)
	api.PUT("/products/:id", write, s.UpdateProduct)
	api.DELETE("/products/:id", write, s.DeactivateProduct)

	// -------- Visits --------
	api.POST("/visits", write, s.RegisterVisit)
	api.GET("/visits", s.ListVisits)
	api.GET("/visits/report", s.GetVisitReport)
	api.GET("/visits/:id", s.GetVisitByID)
	api.PUT("/visits/:id", write, s.UpdateVisit)
	api.DELETE("/visits/:id", write, s.DeleteVisit)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
