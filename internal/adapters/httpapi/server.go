package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/email-scam-classifier/internal/core"
	"go.uber.org/zap"
)

// Server is the REST frontend for the prediction service.
type Server struct {
	service    *core.PredictionService
	logger     *zap.Logger
	listenAddr string
	httpServer *http.Server
}

// NewServer creates a new HTTP frontend
func NewServer(service *core.PredictionService, logger *zap.Logger, listenAddr string) *Server {
	s := &Server{
		service:    service,
		logger:     logger,
		listenAddr: listenAddr,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Panic while handling request",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}))

	router.GET("/", s.handleIndex)
	router.POST("/predict", s.handlePredict)
	router.GET("/health", s.handleHealth)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})

	s.httpServer = &http.Server{
		Addr:         listenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Start starts the HTTP server in the background
func (s *Server) Start() error {
	s.logger.Info("HTTP frontend starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the HTTP server down gracefully
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
