package extract

import (
	"context"
	"time"
)

// Document is one uploaded file handed to extraction.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, doc Document) (Result, error)
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "whisperer" | "pdf-text" | "pdf-ocr"
	Mode     string // hosted extraction mode that produced Text, if any
	Duration time.Duration
	Warnings []string
}

const MethodWhisperer = "whisperer"
