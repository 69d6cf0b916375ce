package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/quote-compare/internal/auth"
	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/compare"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/export"
	"github.com/joseph-ayodele/quote-compare/internal/report"
	"github.com/joseph-ayodele/quote-compare/internal/repository"
	"github.com/joseph-ayodele/quote-compare/internal/storage"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const token = "test-token"

type countingProcessor struct{ calls atomic.Int32 }

func (p *countingProcessor) Process(_ context.Context, up entity.Upload) (entity.Quote, error) {
	p.calls.Add(1)
	if strings.HasPrefix(up.Name, "bad") {
		return entity.Quote{FileName: up.Name, Vendor: "Extraction failed", TotalPremium: "unknown", Error: "no text"}, errors.New("no text")
	}
	return entity.Quote{
		FileName:     up.Name,
		Vendor:       "Hollard",
		TotalPremium: "R1,000.00",
		Sections:     map[string]entity.PolicySection{"Fire": {Included: "Y", Premium: "R400.00"}},
	}, nil
}

type harness struct {
	router http.Handler
	proc   *countingProcessor
}

func newHarness(t *testing.T, opts ...Option) harness {
	t.Helper()
	st, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	proc := &countingProcessor{}
	svc := compare.NewService(repository.NewMemoryStore(), proc, st,
		compare.Config{MaxFileSize: 4096, MaxFiles: 3, LLMEnabled: true}, quiet,
		compare.WithRenderers(report.NewPDFRenderer("", quiet), export.NewWorkbook(quiet)))
	srv := NewServer(svc, auth.NewStaticToken(token), Config{MaxFileSize: 4096, MaxFiles: 3}, quiet, opts...)
	return harness{router: srv.Router(), proc: proc}
}

type part struct {
	name, contentType string
	data              []byte
}

func pdfPart(name string) part {
	return part{name: name, contentType: "application/pdf", data: []byte("%PDF-1.4\nquote body")}
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+p.name+`"`)
		h.Set("Content-Type", p.contentType)
		fw, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(p.data)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func (h harness) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h harness) upload(t *testing.T, parts ...part) *httptest.ResponseRecorder {
	body, ct := multipartBody(t, parts...)
	return h.do(t, http.MethodPost, "/api/quotes/upload", body, ct)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[errorResponse](t, rec).Error.Code
}

func TestUploadCompareAndList(t *testing.T) {
	h := newHarness(t)
	rec := h.upload(t, pdfPart("hollard.pdf"), pdfPart("bad.pdf"))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status %d: %s", rec.Code, rec.Body)
	}
	up := decode[uploadResponse](t, rec)
	if up.QuoteCount != 2 || up.Status != "completed" || !up.LLMAnalysisEnabled {
		t.Fatalf("upload response = %+v", up)
	}
	if up.Results[0].FileName != "hollard.pdf" || up.Results[1].Error == "" {
		t.Fatalf("results = %+v", up.Results)
	}

	rec = h.do(t, http.MethodGet, "/api/quotes/compare/"+up.ComparisonID, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("compare status %d: %s", rec.Code, rec.Body)
	}
	got := decode[compareResponse](t, rec)
	if got.ComparisonID != up.ComparisonID || len(got.Quotes) != 2 {
		t.Fatalf("compare = %+v", got)
	}

	rec = h.do(t, http.MethodGet, "/api/quotes/my-quotes", nil, "")
	mine := decode[myQuotesResponse](t, rec)
	if mine.TotalComparisons != 1 || mine.Comparisons[0].QuoteCount != 2 {
		t.Fatalf("my-quotes = %+v", mine)
	}
	if s := mine.Comparisons[0]; !s.LLMEnabled || s.ProcessingTime != up.ProcessingTime || s.ReportGeneratedAt != nil {
		t.Fatalf("summary = %+v", s)
	}

	rec = h.do(t, http.MethodGet, "/api/quotes/stats", nil, "")
	st := decode[entity.UserStats](t, rec)
	want := entity.UserStats{TotalQuotes: 2, Completed: 1, AveragePremium: "R1,000.00"}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name   string
		parts  []part
		status int
		code   string
	}{
		{"oversize", []part{pdfPart("a.pdf"), {name: "big.pdf", contentType: "application/pdf", data: append([]byte("%PDF-"), make([]byte, 5000)...)}}, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"not pdf", []part{{name: "notes.txt", contentType: "text/plain", data: []byte("hello")}}, http.StatusBadRequest, "UPLOAD_REJECTED"},
		{"no files", nil, http.StatusBadRequest, "UPLOAD_REJECTED"},
		{"too many", []part{pdfPart("1.pdf"), pdfPart("2.pdf"), pdfPart("3.pdf"), pdfPart("4.pdf")}, http.StatusBadRequest, "UPLOAD_REJECTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			rec := h.upload(t, tt.parts...)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if got := errorCode(t, rec); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
			if n := h.proc.calls.Load(); n != 0 {
				t.Errorf("processor called %d times", n)
			}
		})
	}
}

func TestUploadBodyLimit(t *testing.T) {
	h := newHarness(t)
	// well past MaxFiles*MaxFileSize plus framing slack
	big := part{name: "huge.pdf", contentType: "application/pdf", data: make([]byte, 2<<20)}
	rec := h.upload(t, big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if h.proc.calls.Load() != 0 {
		t.Fatal("processor was called")
	}
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t)
	for _, hdr := range []string{"", "Bearer wrong", "Basic " + token} {
		req := httptest.NewRequest(http.MethodGet, "/api/quotes/stats", nil)
		if hdr != "" {
			req.Header.Set("Authorization", hdr)
		}
		rec := httptest.NewRecorder()
		h.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Authorization %q: status %d", hdr, rec.Code)
		}
	}
}

func TestCompareErrors(t *testing.T) {
	h := newHarness(t)
	// malformed ids fail as requests; well-formed unknown ids are not found
	for _, path := range []string{"/api/quotes/compare/not-a-uuid", "/api/quotes/generate-report/not-a-uuid"} {
		method := http.MethodGet
		if strings.Contains(path, "generate-report") {
			method = http.MethodPost
		}
		rec := h.do(t, method, path, nil, "")
		if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_INPUT" {
			t.Errorf("%s: %d %s", path, rec.Code, rec.Body)
		}
	}
	rec := h.do(t, http.MethodPost, "/api/quotes/generate-report/6f1c2a8e-4b1d-4c47-9a7e-0d3b5e6f7a81", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id report: %d %s", rec.Code, rec.Body)
	}
	rec = h.do(t, http.MethodGet, "/api/quotes/compare/6f1c2a8e-4b1d-4c47-9a7e-0d3b5e6f7a81", nil, "")
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "NOT_FOUND" {
		t.Errorf("unknown id: %d %s", rec.Code, rec.Body)
	}
}

func TestGenerateAndDownloadReport(t *testing.T) {
	h := newHarness(t)
	up := decode[uploadResponse](t, h.upload(t, pdfPart("hollard.pdf")))

	for _, format := range []string{"pdf", "xlsx"} {
		rec := h.do(t, http.MethodPost, "/api/quotes/generate-report/"+up.ComparisonID+"?format="+format, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: generate status %d: %s", format, rec.Code, rec.Body)
		}
		info := decode[entity.ReportInfo](t, rec)
		if !strings.HasSuffix(info.Filename, "."+format) || info.DownloadURL != "/api/reports/download/"+info.Filename {
			t.Fatalf("%s: info = %+v", format, info)
		}

		rec = h.do(t, http.MethodGet, "/api/reports/download/"+info.Filename, nil, "")
		if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
			t.Fatalf("%s: download status %d", format, rec.Code)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, info.Filename) {
			t.Errorf("%s: content-disposition = %q", format, cd)
		}
	}

	rec := h.do(t, http.MethodPost, "/api/quotes/generate-report/"+up.ComparisonID+"?format=docx", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d", rec.Code)
	}
	rec = h.do(t, http.MethodGet, "/api/reports/download/missing.pdf", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing report status = %d", rec.Code)
	}
}

func TestHealthNeedsNoAuth(t *testing.T) {
	h := newHarness(t,
		WithHealthInfo("extraction", "llmwhisperer"),
		WithHealthProbe("store", func(context.Context) error { return nil }),
	)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[healthResponse](t, rec)
	want := map[string]string{"extraction": "llmwhisperer", "store": "ok"}
	if got.Status != "healthy" || !cmp.Equal(want, got.Services) {
		t.Fatalf("health = %+v", got)
	}

	h = newHarness(t, WithHealthProbe("store", func(context.Context) error { return errors.New("down") }))
	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusServiceUnavailable || decode[healthResponse](t, rec).Status != "degraded" {
		t.Fatalf("degraded health: %d %s", rec.Code, rec.Body)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{common.UploadRejectedf("no files"), http.StatusBadRequest, common.CodeUploadRejected},
		{common.NewAppError(common.CodeFileTooLarge, "big", common.ErrUploadRejected), http.StatusRequestEntityTooLarge, common.CodeFileTooLarge},
		{common.NotFoundf("comparison x"), http.StatusNotFound, common.CodeNotFound},
		{common.InvalidInputf("bad id"), http.StatusBadRequest, common.CodeInvalidInput},
		{common.NewAppError(common.CodeNotCompleted, "processing", common.ErrConflict), http.StatusConflict, common.CodeNotCompleted},
		{fmt.Errorf("verify: %w", common.ErrUnauthorized), http.StatusUnauthorized, common.CodeUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError, common.CodeInternal},
	}
	for _, tt := range tests {
		status, code := httpStatus(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("httpStatus(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
}
