package compare

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/report"
	"github.com/joseph-ayodele/quote-compare/internal/storage"
)

// GenerateReport renders a completed comparison, stores the document and
// records the report on the comparison. Regenerating replaces the metadata.
func (s *Service) GenerateReport(ctx context.Context, id, format string) (entity.ReportInfo, error) {
	if format == "" {
		format = s.cfg.DefaultFormat
	}
	r, ok := s.renderers[format]
	if !ok {
		return entity.ReportInfo{}, common.InvalidInputf("unsupported report format %q (available: %s)", format, strings.Join(s.Formats(), ", "))
	}

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return entity.ReportInfo{}, err
	}
	if c.Status != constants.StatusCompleted {
		return entity.ReportInfo{}, common.NewAppError(common.CodeNotCompleted,
			fmt.Sprintf("comparison %s is %s; reports need a completed comparison", id, c.Status), common.ErrConflict)
	}

	start := time.Now()
	name, data, err := r.Render(ctx, c)
	if err != nil {
		s.logger.Error("compare.report.render_failed", "comparison_id", id, "format", format, "error", err)
		return entity.ReportInfo{}, common.NewAppError(common.CodeInternal, "render report", err)
	}
	if err := s.storage.Upload(ctx, name, storage.ContentType(name), bytes.NewReader(data)); err != nil {
		s.logger.Error("compare.report.store_failed", "comparison_id", id, "file", name, "error", err)
		return entity.ReportInfo{}, common.NewAppError(common.CodeInternal, "store report", err)
	}

	generatedAt := s.now().UTC()
	var previous string
	if _, err := s.store.Update(ctx, id, func(cur *entity.Comparison) error {
		previous = cur.ReportFilename
		cur.ReportGenerated = true
		cur.ReportFilename = name
		cur.ReportGeneratedAt = &generatedAt
		return nil
	}); err != nil {
		return entity.ReportInfo{}, err
	}
	s.dropSuperseded(ctx, id, previous, name)

	s.logger.Info("compare.report.ok",
		"comparison_id", id,
		"file", name,
		"bytes", len(data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entity.ReportInfo{
		ReportID:    id,
		Filename:    name,
		DownloadURL: report.DownloadURL(s.cfg.PublicBaseURL, name),
		GeneratedAt: generatedAt,
	}, nil
}

// dropSuperseded removes the previous report of the same format. Reports in
// other formats stay downloadable.
func (s *Service) dropSuperseded(ctx context.Context, id, previous, current string) {
	if previous == "" || previous == current || filepath.Ext(previous) != filepath.Ext(current) {
		return
	}
	if err := s.storage.Delete(ctx, previous); err != nil {
		s.logger.Warn("compare.report.cleanup_failed", "comparison_id", id, "file", previous, "error", err)
		return
	}
	s.logger.Debug("compare.report.superseded", "comparison_id", id, "file", previous)
}

// OpenReport streams a stored report. Unknown names are common.ErrNotFound.
func (s *Service) OpenReport(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := storage.ValidName(name); err != nil {
		return nil, err
	}
	return s.storage.Download(ctx, name)
}
