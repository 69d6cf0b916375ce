// Package compare drives batches of quote documents through the pipeline and
// keeps the resulting comparisons.
package compare

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/report"
	"github.com/joseph-ayodele/quote-compare/internal/repository"
	"github.com/joseph-ayodele/quote-compare/internal/storage"
)

// Processor turns one upload into a quote. It returns a placeholder quote
// alongside any error; *pipeline.Processor satisfies it.
type Processor interface {
	Process(ctx context.Context, up entity.Upload) (entity.Quote, error)
}

// ReportScheduler queues report generation for a completed comparison.
type ReportScheduler interface {
	Schedule(comparisonID string) bool
}

type Config struct {
	MaxFileSize       int64
	MaxFiles          int
	Concurrency       int
	ProcessingTimeout time.Duration
	PublicBaseURL     string
	DefaultFormat     string
	// LLMEnabled is recorded on each comparison.
	LLMEnabled        bool
}

func (c *Config) applyDefaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = constants.MaxFileSizeDefault
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = constants.MaxFilesDefault
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 5
	}
	if c.ProcessingTimeout <= 0 {
		c.ProcessingTimeout = 300 * time.Second
	}
	if c.DefaultFormat == "" {
		c.DefaultFormat = "pdf"
	}
}

type Service struct {
	store     repository.ComparisonStore
	proc      Processor
	storage   storage.Storage
	renderers map[string]report.Renderer
	scheduler ReportScheduler
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

// WithRenderers registers report renderers by their format.
func WithRenderers(rs ...report.Renderer) Option {
	return func(s *Service) {
		for _, r := range rs {
			s.renderers[r.Format()] = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

func NewService(store repository.ComparisonStore, proc Processor, st storage.Storage, cfg Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	s := &Service{
		store:     store,
		proc:      proc,
		storage:   st,
		renderers: map[string]report.Renderer{},
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetReportScheduler enables automatic report generation after uploads.
func (s *Service) SetReportScheduler(rs ReportScheduler) { s.scheduler = rs }

// Formats lists the registered report formats in sorted order.
func (s *Service) Formats() []string {
	return slices.Sorted(maps.Keys(s.renderers))
}

func (s *Service) Get(ctx context.Context, id string) (entity.Comparison, error) {
	return s.store.Get(ctx, id)
}

// List returns summaries, newest first.
func (s *Service) List(ctx context.Context) ([]entity.QuoteSummary, error) {
	cs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.QuoteSummary, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Summary())
	}
	return out, nil
}

// Stats aggregates over every stored comparison. The average covers only
// premiums that parse as amounts.
func (s *Service) Stats(ctx context.Context) (entity.UserStats, error) {
	cs, err := s.store.List(ctx)
	if err != nil {
		return entity.UserStats{}, err
	}
	return computeStats(cs), nil
}
