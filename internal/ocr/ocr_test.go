package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeRunner struct {
	outputs map[string]string
	fail    map[string]bool
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)
	if f.fail[name] {
		return nil, []byte(name + " exploded"), errors.New("exit status 1")
	}
	if name == "pdftoppm" {
		prefix := args[len(args)-1]
		for _, n := range []string{"-1.png", "-2.png"} {
			if err := os.WriteFile(prefix+n, []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
	}
	return []byte(f.outputs[name]), nil, nil
}

func writeTempPDF(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "quote.pdf")
	if err := os.WriteFile(p, []byte("%PDF-1.4 not really"), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

const layoutText = "HOLLARD INSURANCE\r\nSection          Premium      Sum Insured   \r\nFire             R 450.00     R 2,500,000\r\n" +
	"Buildings combined  R 1,200.00  R 5,000,000\r\nTotal Premium: R 1,650.00 per month\r\n"

func TestExtractUsesTextLayer(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"pdftotext": layoutText}}
	e := NewExtractor(Config{Runner: r, MinTextChars: 40}, nil)

	res, err := e.Extract(context.Background(), writeTempPDF(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != MethodPDFText {
		t.Fatalf("method = %q", res.Method)
	}
	if strings.Contains(res.Text, "\r") {
		t.Fatal("CRLF not normalized")
	}
	if !strings.Contains(res.Text, "Fire             R 450.00") {
		t.Fatalf("column spacing lost: %q", res.Text)
	}
	for _, c := range r.calls {
		if c == "tesseract" {
			t.Fatal("OCR should not run when the text layer is usable")
		}
	}
}

func TestExtractFallsBackToOCR(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{
		"pdftotext": "  \f ",
		"tesseract": "Total Premium R 980.00 SASRIA included",
	}}
	e := NewExtractor(Config{Runner: r, MinTextChars: 20, MaxPages: 5}, nil)

	res, err := e.Extract(context.Background(), writeTempPDF(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != MethodPDFOCR {
		t.Fatalf("method = %q, want %q", res.Method, MethodPDFOCR)
	}
	if got := strings.Count(res.Text, "SASRIA"); got != 2 {
		t.Fatalf("expected text from both pages, got %q", res.Text)
	}
}

func TestExtractBothFail(t *testing.T) {
	r := &fakeRunner{fail: map[string]bool{"pdftotext": true, "pdftoppm": true}}
	e := NewExtractor(Config{Runner: r}, nil)
	if _, err := e.Extract(context.Background(), writeTempPDF(t)); err == nil {
		t.Fatal("expected error")
	}
}

func TestUsableChars(t *testing.T) {
	if got := UsableChars(" \f--__ R1,0 "); got != 3 {
		t.Fatalf("UsableChars = %d", got)
	}
}
