// Package server exposes the entitlement engine and the publishing
// pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/purposeful/coach/internal/chat"
	"github.com/purposeful/coach/internal/config"
	"github.com/purposeful/coach/internal/content"
	"github.com/purposeful/coach/internal/entitlement"
	entitlementdomain "github.com/purposeful/coach/internal/entitlement/domain"
	"github.com/purposeful/coach/internal/identity"
	"github.com/purposeful/coach/internal/media"
	"github.com/purposeful/coach/internal/pipeline"
	"github.com/purposeful/coach/internal/publish"
	"github.com/purposeful/coach/internal/ratelimit"
	"github.com/purposeful/coach/internal/session"
	"github.com/purposeful/coach/internal/storage"
	"github.com/purposeful/coach/internal/transcribe"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	identity.Module,
	chat.Module,
	entitlement.Module,
	session.Module,
	storage.Module,
	transcribe.Module,
	media.Module,
	content.Module,
	publish.Module,
	pipeline.Module,
	ratelimit.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
	engine      *gin.Engine
	log         *zap.Logger
	entitlement entitlementdomain.Service
	worker      *pipeline.Worker
	limiter     *ratelimit.InitializeLimiter
}

type ServerParams struct {
	fx.In

	Engine      *gin.Engine
	Log         *zap.Logger
	Entitlement entitlementdomain.Service
	Worker      *pipeline.Worker
	Limiter     *ratelimit.InitializeLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Engine,
		log:         p.Log.Named("http.server"),
		entitlement: p.Entitlement,
		worker:      p.Worker,
		limiter:     p.Limiter,
	}
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")

	trial := api.Group("/trial")
	trial.POST("/initialize", s.InitializeTrial)
	trial.GET("/status/:userId", s.TierStatus)
	trial.GET("/definitions", s.TierDefinitions)

	api.POST("/chat/limit-check", s.ChatLimitCheck)

	api.POST("/sessions/:id/process", s.ProcessSession)
}
