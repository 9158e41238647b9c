package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) setupRoutes() {
	gin.SetMode(s.ginMode)
	s.router = gin.New()

	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())

	s.router.GET("/", s.index)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(s.metricsService.Handler()))

	agent := s.router.Group("/")
	agent.Use(s.maxBodySizeMiddleware())
	agent.Use(s.rateLimitMiddleware())
	agent.Use(s.verifySignature)
	agent.POST("/", s.handleAgent)
}

func (s *Server) index(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
