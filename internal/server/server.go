// Package server exposes the quote comparison service over HTTP.
package server

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/auth"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
)

// QuoteService is the part of compare.Service the handlers use.
type QuoteService interface {
	Upload(ctx context.Context, files []entity.Upload) (entity.Comparison, error)
	Get(ctx context.Context, id string) (entity.Comparison, error)
	List(ctx context.Context) ([]entity.QuoteSummary, error)
	Stats(ctx context.Context) (entity.UserStats, error)
	GenerateReport(ctx context.Context, id, format string) (entity.ReportInfo, error)
	OpenReport(ctx context.Context, name string) (io.ReadCloser, error)
}

// HealthProbe reports a dependency's state; a nil error means healthy.
type HealthProbe func(ctx context.Context) error

type Config struct {
	AllowedOrigins []string
	MaxFileSize    int64
	MaxFiles       int
	HealthTimeout  time.Duration
}

type Server struct {
	svc      QuoteService
	verifier auth.Verifier
	cfg      Config
	logger   *slog.Logger
	probes   map[string]HealthProbe
	info     map[string]string
	now      func() time.Time
}

type Option func(*Server)

// WithHealthProbe adds a checked dependency to /api/health.
func WithHealthProbe(name string, p HealthProbe) Option {
	return func(s *Server) { s.probes[name] = p }
}

// WithHealthInfo adds a static entry to the health services map.
func WithHealthInfo(name, value string) Option {
	return func(s *Server) { s.info[name] = value }
}

func NewServer(svc QuoteService, verifier auth.Verifier, cfg Config, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if verifier == nil {
		verifier = auth.AllowAll{}
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = constants.MaxFileSizeDefault
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = constants.MaxFilesDefault
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 3 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		svc:      svc,
		verifier: verifier,
		cfg:      cfg,
		logger:   logger,
		probes:   map[string]HealthProbe{},
		info:     map[string]string{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.requestLogger(), cors.New(s.corsConfig()))
	// multipart parts above this spill to temp files
	r.MaxMultipartMemory = 32 << 20

	api := r.Group("/api")
	api.GET("/health", s.health)

	quotes := api.Group("/quotes", s.authenticate())
	quotes.POST("/upload", s.upload)
	quotes.GET("/compare/:comparison_id", s.compare)
	quotes.GET("/my-quotes", s.myQuotes)
	quotes.GET("/stats", s.stats)
	quotes.POST("/generate-report/:comparison_id", s.generateReport)

	reports := api.Group("/reports", s.authenticate())
	reports.GET("/download/:filename", s.download)
	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	if len(s.cfg.AllowedOrigins) == 1 && s.cfg.AllowedOrigins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.cfg.AllowedOrigins
		cfg.AllowCredentials = true
	}
	cfg.AddAllowHeaders("Authorization", requestIDHeader)
	cfg.AddExposeHeaders(requestIDHeader, "Content-Disposition")
	return cfg
}

// bodyLimit caps a whole upload request: every file at the limit plus room
// for multipart framing.
func (s *Server) bodyLimit() int64 {
	return int64(s.cfg.MaxFiles)*s.cfg.MaxFileSize + 1<<20
}
