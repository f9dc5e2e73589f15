// Package api serves the allocation tracker over HTTP/JSON using gin.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/equiptracker/internal/logging"
	"github.com/dmitrijs2005/equiptracker/internal/server/catalog"
	"github.com/dmitrijs2005/equiptracker/internal/server/metrics"
	"github.com/dmitrijs2005/equiptracker/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// Services bundles what the handlers call into.
type Services struct {
	Entries *services.EntryService
	Export  *services.ExportService
	Catalog *catalog.Catalog
	Metrics *metrics.Metrics
}

type HTTPServer struct {
	address   string
	entries   *services.EntryService
	export    *services.ExportService
	catalog   *catalog.Catalog
	metrics   *metrics.Metrics
	staticDir string
	logger    logging.Logger
	engine    *gin.Engine
}

// NewHTTPServer builds the router. staticDir, when set, is served at "/"
// (index.html) and "/static".
func NewHTTPServer(a string, l logging.Logger, svc Services, staticDir string) *HTTPServer {
	if svc.Catalog == nil {
		svc.Catalog = catalog.Default()
	}
	if svc.Metrics == nil {
		svc.Metrics = metrics.New()
	}
	s := &HTTPServer{
		address:   a,
		entries:   svc.Entries,
		export:    svc.Export,
		catalog:   svc.Catalog,
		metrics:   svc.Metrics,
		staticDir: staticDir,
		logger:    l.With("module", "http_server"),
	}
	s.engine = s.routes()
	return s
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe)

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	api.GET("/entries", s.listEntries)
	api.POST("/entries", s.createEntry)
	api.GET("/entries/export", s.exportEntries)
	api.DELETE("/entries/:id", s.deleteEntry)
	api.GET("/catalog", s.getCatalog)

	if s.staticDir != "" {
		r.Static("/static", s.staticDir)
		r.StaticFile("/", filepath.Join(s.staticDir, "index.html"))
	}
	return r
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
