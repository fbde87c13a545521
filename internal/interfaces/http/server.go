package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wraps the gin engine and its lifecycle.
type Server struct {
	router *gin.Engine
	srv    *http.Server
	logger *zap.Logger
}

// NewServer builds the router and registers every route.
func NewServer(handlers *Handlers, identity IdentityProvider, port int, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/health", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(authMiddleware(identity))
	{
		apps := api.Group("/applications")
		{
			apps.POST("", handlers.CreateApplication)
			apps.GET("", handlers.ListApplications)
			apps.GET("/:id", handlers.GetApplication)
			apps.PUT("/:id", handlers.UpdateApplication)
			apps.DELETE("/:id", handlers.DeleteApplication)

			apps.GET("/:id/requirements", handlers.GetRequirements)
			apps.GET("/:id/aggregate", handlers.GetAggregate)

			apps.POST("/:id/documents", handlers.UploadDocument)
			apps.GET("/:id/documents", handlers.ListDocuments)
			apps.DELETE("/:id/documents/:docID", handlers.DeleteDocument)
			apps.POST("/:id/documents/:docID/reprocess", handlers.ReprocessDocument)
			apps.GET("/:id/uploads/sign", handlers.SignUpload)

			apps.GET("/:id/letter/validate", handlers.ValidateLetter)
			apps.POST("/:id/letter", handlers.GenerateLetter)
			apps.GET("/:id/letter", handlers.GetLetter)
			apps.POST("/:id/statement", handlers.GenerateStatement)

			apps.GET("/:id/package.pdf", handlers.DownloadCombinedPDF)
			apps.GET("/:id/form.pdf", handlers.DownloadForm)
			apps.GET("/:id/package.zip", handlers.DownloadPackage)
		}
	}

	return &Server{
		router: router,
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		},
		logger: logger,
	}
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server stopping")
	return s.srv.Shutdown(ctx)
}

// requestLogger logs one line per request with latency and status.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
