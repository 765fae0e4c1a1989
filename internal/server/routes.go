package server

import (
	"github.com/nulzo/provider-relay/internal/server/middleware"
	v1 "github.com/nulzo/provider-relay/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.Tracing("provider-relay"))
	s.router.Use(middleware.ErrorHandler(s.logger))

	// Health Check (public)
	healthHandler := v1.NewHealthHandler()
	s.router.GET("/health", healthHandler.Health)

	api := s.router.Group("/relay/v1")
	api.Use(middleware.Auth(s.config.Server.APIKeys))

	limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)
	api.Use(limiter.Middleware())
	{
		routingHandler := v1.NewRoutingHandler(s.flow)
		api.GET("/routing", routingHandler.Get)
		api.PUT("/routing", routingHandler.Put)
		api.POST("/routing/reapply", routingHandler.Reapply)

		probeHandler := v1.NewProbeHandler(s.flow)
		api.POST("/probe", probeHandler.Probe)

		providerHandler := v1.NewProviderHandler(s.flow)
		api.GET("/providers", providerHandler.List)

		auditHandler := v1.NewAuditHandler(s.flow)
		api.GET("/audit", auditHandler.Recent)
	}
}
