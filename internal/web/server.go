// Package web exposes the command surface over a local HTTP API.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/config"
)

type Server struct {
	config  *config.Config
	handler *Handler
	engine  *gin.Engine
	server  *http.Server
	logger  *zap.Logger
}

// NewServer builds the HTTP server. A positive customPort overrides the
// configured port.
func NewServer(cfg *config.Config, deps Deps, logger *zap.Logger, customPort int) *Server {
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := NewHandler(cfg, deps)
	engine := gin.New()
	engine.Use(RequestLogger(logger), Recovery())
	handler.SetupRoutes(engine)

	webCfg := *cfg
	if customPort > 0 {
		webCfg.Web.Port = customPort
	}

	// Cancelled on Shutdown so open event streams end.
	baseCtx, cancel := context.WithCancel(context.Background())
	httpServer := &http.Server{
		Addr:              webCfg.Address(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	httpServer.RegisterOnShutdown(cancel)

	return &Server{
		config:  cfg,
		handler: handler,
		engine:  engine,
		server:  httpServer,
		logger:  logger,
	}
}

// Start blocks serving requests. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting web server", zap.String("addr", "http://"+s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web server")
	return s.server.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return s.server.Addr
}
