package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nulzo/provider-relay/internal/config"
	"github.com/nulzo/provider-relay/internal/relay"
	"github.com/nulzo/provider-relay/internal/server/middleware"
)

type Server struct {
	router *gin.Engine
	config *config.Config
	logger *zap.Logger
	flow   *relay.Flow
}

func New(cfg *config.Config, logger *zap.Logger, flow *relay.Flow) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.Recovery(logger))
	engine.Use(middleware.Logger(logger))

	s := &Server{
		router: engine,
		config: cfg,
		logger: logger,
		flow:   flow,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	return s.router.Run(":" + s.config.Server.Port)
}
