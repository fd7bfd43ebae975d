package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/tally/internal/config"
	"github.com/smallbiznis/tally/internal/handler"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server exposes the event ingress and the derived totals over HTTP. The
// handler itself stays transport-agnostic; this is just the front door.
type Server struct {
	engine  *gin.Engine
	cfg     config.Config
	db      *gorm.DB
	log     *zap.Logger
	handler *handler.Handler
}

type Params struct {
	fx.In

	Gin     *gin.Engine
	Cfg     config.Config
	DB      *gorm.DB
	Log     *zap.Logger
	Handler *handler.Handler
}

// NewEngine builds the gin engine with the baseline routes.
func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// NewServer wires the API routes.
func NewServer(p Params) *Server {
	s := &Server{
		engine:  p.Gin,
		cfg:     p.Cfg,
		db:      p.DB,
		log:     p.Log.Named("http.server"),
		handler: p.Handler,
	}

	v1 := s.engine.Group("/v1")
	v1.POST("/events", s.AcceptEvent)
	v1.GET("/totals", s.Totals)

	return s
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)
