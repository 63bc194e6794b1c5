package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bookdetector/internal/config"
	"bookdetector/internal/detector"
	"bookdetector/internal/logging"
	"bookdetector/internal/preview"
)

// Server exposes a detector service over HTTP.
type Server struct {
	bind     string
	cfg      *config.Config
	svc      *detector.Service
	renderer *preview.Renderer
	logger   *slog.Logger
	started  time.Time

	engine   *gin.Engine
	listener net.Listener
	server   *http.Server
}

// NewServer builds the router. Nothing listens until Start.
func NewServer(cfg *config.Config, svc *detector.Service, renderer *preview.Renderer, logger *slog.Logger) (*Server, error) {
	if cfg == nil || svc == nil {
		return nil, errors.New("api: config and detector service are required")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api: paths.api_bind is empty")
	}
	if renderer == nil {
		renderer = preview.NewRenderer(cfg, logger)
	}

	s := &Server{
		bind:     bind,
		cfg:      cfg,
		svc:      svc,
		renderer: renderer,
		logger:   logging.NewComponentLogger(logger, "api"),
		started:  time.Now(),
	}
	s.engine = s.routes()
	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 16 << 20
	r.Use(gin.Recovery(), s.requestContext())

	api := r.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/catalog", s.handleCatalog)
	api.POST("/catalog/rebuild", s.handleRebuild)
	api.GET("/matches", s.handleMatches)
	api.POST("/ocr", s.handleOCR)
	api.POST("/scan", s.handleScan)
	api.GET("/preview", s.handlePreview)
	api.GET("/history", s.handleHistory)

	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "not found")
	})
	return r
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on paths.api_bind and serves until ctx is cancelled or Stop
// is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_server_failed", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening",
		logging.String(logging.FieldEventType, "api_started"),
		logging.String("address", listener.Addr().String()),
	)
	return nil
}

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}
