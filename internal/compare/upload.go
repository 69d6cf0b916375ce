package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/pipeline"
)

// ValidateUploads checks every file before any processing starts.
func (s *Service) ValidateUploads(files []entity.Upload) error {
	if len(files) == 0 {
		return common.UploadRejectedf("no files uploaded")
	}
	if len(files) > s.cfg.MaxFiles {
		return common.UploadRejectedf("%d files uploaded, at most %d allowed", len(files), s.cfg.MaxFiles)
	}
	for i, f := range files {
		field := fmt.Sprintf("files[%d]", i)
		if f.Name != "" {
			field = f.Name
		}
		if int64(len(f.Data)) > s.cfg.MaxFileSize {
			return common.NewAppError(common.CodeFileTooLarge,
				fmt.Sprintf("%s: file size %d exceeds the %d byte limit", field, len(f.Data), s.cfg.MaxFileSize),
				common.ErrUploadRejected)
		}
		v := common.NewValidator().
			Field(field+" name", f.Name, common.Required, common.PDFFileName).
			Field(field+" content type", f.ContentType, common.PDFContentType).
			Field(field, f.Data, common.Required, common.PDFMagic)
		if err := common.ValidateAndReturnError(v, common.CodeUploadRejected, common.ErrUploadRejected); err != nil {
			return err
		}
	}
	return nil
}

// Upload validates the batch, stores it as processing, extracts every file
// concurrently and finalizes the comparison. Per-file failures are recorded on
// their quotes; only validation and store errors are returned.
func (s *Service) Upload(ctx context.Context, files []entity.Upload) (entity.Comparison, error) {
	if err := s.ValidateUploads(files); err != nil {
		s.logger.Warn("compare.upload.rejected", "files", len(files), "error", err)
		return entity.Comparison{}, err
	}

	start := time.Now()
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	c := entity.Comparison{
		ID:         s.newID(),
		CreatedAt:  s.now().UTC(),
		Status:     constants.StatusProcessing,
		FileNames:  names,
		LLMEnabled: s.cfg.LLMEnabled,
	}
	if err := s.store.Put(ctx, c); err != nil {
		return entity.Comparison{}, err
	}
	s.logger.Info("compare.upload.accepted",
		"req_id", common.RequestIDFromContext(ctx),
		"subject", common.SubjectFromContext(ctx),
		"comparison_id", c.ID,
		"files", len(files),
	)

	quotes := s.processAll(ctx, c.ID, files)

	failed := 0
	premiums := make([]string, len(quotes))
	for i, q := range quotes {
		premiums[i] = q.TotalPremium
		if q.Failed() {
			failed++
		}
	}
	status := constants.StatusCompleted
	if failed == len(quotes) {
		status = constants.StatusFailed
	}

	// finalize even when the request is gone so the record never stays processing
	final, err := s.store.Update(context.WithoutCancel(ctx), c.ID, func(cur *entity.Comparison) error {
		cur.Quotes = quotes
		cur.TotalPremiums = premiums
		cur.Status = status
		cur.ProcessingTime = time.Since(start)
		return nil
	})
	if err != nil {
		return entity.Comparison{}, err
	}

	s.logger.Info("compare.upload.ok",
		"comparison_id", final.ID,
		"status", final.Status,
		"quotes", len(final.Quotes),
		"failed", failed,
		"elapsed_ms", final.ProcessingTime.Milliseconds(),
	)

	if s.scheduler != nil && final.Status == constants.StatusCompleted {
		if !s.scheduler.Schedule(final.ID) {
			s.logger.Warn("compare.report.schedule_dropped", "comparison_id", final.ID)
		}
	}
	return final, nil
}

// processAll returns one quote per file, in upload order.
func (s *Service) processAll(ctx context.Context, id string, files []entity.Upload) []entity.Quote {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProcessingTimeout)
	defer cancel()

	quotes := make([]entity.Quote, len(files))
	done := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			q, err := s.proc.Process(gctx, f)
			if err != nil {
				s.logger.Warn("compare.file.failed", "comparison_id", id, "file", f.Name, "error", err)
				if q.Error == "" {
					q = pipeline.FailedQuote(f.Name, err)
				}
			}
			q.FileName = f.Name
			quotes[i] = q
			done[i] = true
			// per-file failures never cancel siblings
			return nil
		})
	}
	_ = g.Wait()

	for i, f := range files {
		if done[i] {
			continue
		}
		cause := ctx.Err()
		if cause == nil {
			cause = errors.New("processing abandoned")
		}
		quotes[i] = pipeline.FailedQuote(f.Name, fmt.Errorf("not processed: %w", cause))
	}
	return quotes
}
