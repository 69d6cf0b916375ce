package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/storage"
)

type uploadResponse struct {
	ComparisonID       string                     `json:"comparison_id"`
	Status             constants.ComparisonStatus `json:"status"`
	Message            string                     `json:"message"`
	QuoteCount         int                        `json:"quote_count"`
	Results            []entity.Quote             `json:"results"`
	ProcessingTime     float64                    `json:"processing_time"`
	LLMAnalysisEnabled bool                       `json:"llm_analysis_enabled"`
	ReportGenerated    bool                       `json:"report_generated"`
	ReportFilename     string                     `json:"report_filename,omitempty"`
}

type compareResponse struct {
	ComparisonID string                     `json:"comparison_id"`
	Status       constants.ComparisonStatus `json:"status"`
	CreatedAt    time.Time                  `json:"created_at"`
	Quotes       []entity.Quote             `json:"quotes"`
}

type myQuotesResponse struct {
	TotalComparisons int                   `json:"total_comparisons"`
	Comparisons      []entity.QuoteSummary `json:"comparisons"`
}

func (s *Server) upload(c *gin.Context) {
	if c.Request.ContentLength > s.bodyLimit() {
		s.writeError(c, common.NewAppError(common.CodeFileTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", s.bodyLimit()), common.ErrUploadRejected))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.bodyLimit())
	form, err := c.MultipartForm()
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.writeError(c, common.NewAppError(common.CodeFileTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooBig.Limit), common.ErrUploadRejected))
			return
		}
		s.writeError(c, common.UploadRejectedf("expected a multipart form with files: %v", err))
		return
	}

	files, err := s.readFiles(form.File["files"])
	if err != nil {
		s.writeError(c, err)
		return
	}

	cmp, err := s.svc.Upload(c.Request.Context(), files)
	if err != nil {
		s.writeError(c, err)
		return
	}

	failed := 0
	for _, q := range cmp.Quotes {
		if q.Failed() {
			failed++
		}
	}
	msg := fmt.Sprintf("Processed %d quotes", len(cmp.Quotes))
	if failed > 0 {
		msg = fmt.Sprintf("Processed %d quotes, %d could not be extracted", len(cmp.Quotes), failed)
	}

	c.JSON(http.StatusOK, uploadResponse{
		ComparisonID:       cmp.ID,
		Status:             cmp.Status,
		Message:            msg,
		QuoteCount:         len(cmp.Quotes),
		Results:            cmp.Quotes,
		ProcessingTime:     cmp.ProcessingTime.Seconds(),
		LLMAnalysisEnabled: cmp.LLMEnabled,
		ReportGenerated:    cmp.ReportGenerated,
		ReportFilename:     cmp.ReportFilename,
	})
}

// readFiles loads each part, reading at most one byte past the size limit so
// oversize files are still seen as oversize by validation.
func (s *Server) readFiles(headers []*multipart.FileHeader) ([]entity.Upload, error) {
	if len(headers) > s.cfg.MaxFiles {
		return nil, common.UploadRejectedf("%d files uploaded, at most %d allowed", len(headers), s.cfg.MaxFiles)
	}
	out := make([]entity.Upload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > s.cfg.MaxFileSize {
			return nil, common.NewAppError(common.CodeFileTooLarge,
				fmt.Sprintf("%s: file size %d exceeds the %d byte limit", fh.Filename, fh.Size, s.cfg.MaxFileSize),
				common.ErrUploadRejected)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, common.UploadRejectedf("%s: %v", fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxFileSize+1))
		f.Close()
		if err != nil {
			return nil, common.UploadRejectedf("%s: %v", fh.Filename, err)
		}
		out = append(out, entity.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return out, nil
}

// comparisonID rejects malformed ids as a request error (400 INVALID_INPUT).
// Only well-formed ids reach the store, where an unknown id is 404 NOT_FOUND.
func (s *Server) comparisonID(c *gin.Context) (string, bool) {
	id := c.Param("comparison_id")
	v := common.NewValidator().Field("comparison_id", id, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v, common.CodeInvalidInput, common.ErrInvalidInput); err != nil {
		s.writeError(c, err)
		return "", false
	}
	return id, true
}

func (s *Server) compare(c *gin.Context) {
	id, ok := s.comparisonID(c)
	if !ok {
		return
	}
	cmp, err := s.svc.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, compareResponse{
		ComparisonID: cmp.ID,
		Status:       cmp.Status,
		CreatedAt:    cmp.CreatedAt,
		Quotes:       cmp.Quotes,
	})
}

func (s *Server) myQuotes(c *gin.Context) {
	list, err := s.svc.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, myQuotesResponse{TotalComparisons: len(list), Comparisons: list})
}

func (s *Server) stats(c *gin.Context) {
	st, err := s.svc.Stats(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) generateReport(c *gin.Context) {
	id, ok := s.comparisonID(c)
	if !ok {
		return
	}
	info, err := s.svc.GenerateReport(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) download(c *gin.Context) {
	name := c.Param("filename")
	rc, err := s.svc.OpenReport(c.Request.Context(), name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, storage.ContentType(name), rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	})
}
