package viewer

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"mediascrape/pkg/config"
	"mediascrape/pkg/logger"
	"mediascrape/pkg/storage"
)

const shutdownTimeout = 5 * time.Second

// Server serves completed scrapes from an output root for preview
type Server struct {
	router *gin.Engine
	server *http.Server
	root   string
	store  storage.Adapter
	logger logger.Logger
}

// NewServer creates a preview server for the scrapes under outputRoot
func NewServer(cfg config.ViewerConfig, outputRoot string, store storage.Adapter, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	root, err := filepath.Abs(outputRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output root: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(log))
	router.SetHTMLTemplate(template.Must(template.New(indexTemplateName).Parse(indexTemplate)))

	s := &Server{
		router: router,
		root:   root,
		store:  store,
		logger: log.WithField("component", "viewer"),
	}
	s.routes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/view/:folder/*path", s.handleView)
	s.router.GET("/api/scrapes", s.handleListScrapes)
	s.router.GET("/api/scrapes/:folder/manifest", s.handleManifest)
}

// Router returns the underlying Gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoWithFields("Viewer listening", map[string]interface{}{
			"address":     s.server.Addr,
			"output_root": s.root,
		})
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down viewer")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// loggerMiddleware logs one line per request
func loggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  time.Since(start),
			"client_ip": c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.Errors()
			log.ErrorWithFields("HTTP request with errors", fields)
			return
		}
		log.DebugWithFields("HTTP request", fields)
	}
}
