package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit

	// MinTextChars is the usable-character count below which the text layer is
	// treated as missing and the PDF is OCRed instead. Default 100.
	MinTextChars int

	PSM int // e.g., 6 is good for uniform block of text

	Runner Runner // nil -> os/exec
}

type ExtractionResult struct {
	Text       string
	Pages      int
	Method     string // "pdf-text" | "pdf-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

const (
	MethodPDFText = "pdf-text"
	MethodPDFOCR  = "pdf-ocr"
)

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 100
	}
	r := cfg.Runner
	if r == nil {
		r = execRunner{logger: logger}
	}
	return &Extractor{cfg: cfg, runner: r, logger: logger}
}

// Extract reads the PDF text layer and falls back to OCR when the layer is
// missing or too thin. The longer of the two texts is returned even when it
// is below MinTextChars; callers decide whether that is usable.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	e.logger.Debug("ocr.extract.start", "path", path)

	pages, err := PageCount(path)
	var warns []string
	if err != nil {
		warns = append(warns, fmt.Sprintf("page count: %v", err))
	}

	txt, textPages, w, textErr := e.pdfToText(ctx, path)
	warns = append(warns, w...)
	if pages == 0 {
		pages = textPages
	}
	txt = Normalize(txt)
	if textErr == nil && UsableChars(txt) >= e.cfg.MinTextChars {
		res := ExtractionResult{
			Text:       txt,
			Pages:      pages,
			Method:     MethodPDFText,
			Warnings:   warns,
			Confidence: heuristicConfidence(txt),
			Duration:   time.Since(start),
		}
		e.logger.Info("ocr.extract.ok", "path", path, "method", res.Method, "pages", res.Pages, "chars", len(res.Text))
		return res, nil
	}
	if textErr != nil {
		warns = append(warns, fmt.Sprintf("pdftotext: %v", textErr))
	}

	e.logger.Info("ocr.extract.text_layer_thin", "path", path, "usable_chars", UsableChars(txt), "min", e.cfg.MinTextChars)
	ocrTxt, ocrPages, w2, ocrErr := e.pdfToOCR(ctx, path, pages)
	warns = append(warns, w2...)
	ocrTxt = Normalize(ocrTxt)

	if ocrErr != nil && textErr != nil {
		e.logger.Error("ocr.extract.failed", "path", path, "error", ocrErr)
		return ExtractionResult{Pages: pages, Warnings: warns, Duration: time.Since(start)},
			fmt.Errorf("pdftotext: %v; ocr: %w", textErr, ocrErr)
	}

	res := ExtractionResult{Pages: pages, Warnings: warns, Duration: time.Since(start)}
	if UsableChars(ocrTxt) > UsableChars(txt) {
		res.Text, res.Method, res.Language = ocrTxt, MethodPDFOCR, e.cfg.TesseractLang
		if res.Pages == 0 {
			res.Pages = ocrPages
		}
	} else {
		res.Text, res.Method = txt, MethodPDFText
	}
	res.Confidence = heuristicConfidence(res.Text)
	e.logger.Info("ocr.extract.ok", "path", path, "method", res.Method, "pages", res.Pages, "chars", len(res.Text))
	return res, nil
}
