package whisperer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/quote-compare/internal/extract"
)

type fakeAPI struct {
	mu       sync.Mutex
	uploads  []string
	statuses map[string][]string // mode -> status sequence
	text     map[string]string   // mode -> result text
	failMode map[string]int      // mode -> HTTP status on upload
	polls    map[string]int
	gotKey   string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/whisper", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.gotKey = r.Header.Get("unstract-key")
		mode := r.URL.Query().Get("mode")
		f.uploads = append(f.uploads, mode)
		if r.URL.Query().Get("output_mode") != "layout_preserving" {
			t.Errorf("output_mode = %q", r.URL.Query().Get("output_mode"))
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			b, _ := io.ReadAll(file)
			if !strings.HasPrefix(string(b), "%PDF-") {
				t.Errorf("unexpected upload body %q", b)
			}
		}
		if code, ok := f.failMode[mode]; ok {
			w.WriteHeader(code)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"whisper_hash": "h-" + mode, "status": "accepted"})
	})
	mux.HandleFunc("/whisper-status", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		mode := strings.TrimPrefix(r.URL.Query().Get("whisper_hash"), "h-")
		seq := f.statuses[mode]
		i := f.polls[mode]
		f.polls[mode] = i + 1
		st := "processed"
		if i < len(seq) {
			st = seq[i]
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": st, "error": "boom"})
	})
	mux.HandleFunc("/whisper-retrieve", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		mode := strings.TrimPrefix(r.URL.Query().Get("whisper_hash"), "h-")
		_ = json.NewEncoder(w).Encode(map[string]string{"result_text": f.text[mode]})
	})
	return mux
}

func newFake() *fakeAPI {
	return &fakeAPI{
		statuses: map[string][]string{},
		text:     map[string]string{},
		failMode: map[string]int{},
		polls:    map[string]int{},
	}
}

func testExtractor(t *testing.T, f *fakeAPI) *Extractor {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return New(Config{
		APIKey:       "k-123",
		BaseURL:      srv.URL,
		PollInterval: time.Millisecond,
		MaxPolls:     5,
		ModeTimeout:  5 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var doc = extract.Document{Name: "q.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4 test")}

func TestNewWithoutKeyIsNil(t *testing.T) {
	if e := New(Config{}, nil); e != nil {
		t.Fatalf("expected nil extractor without API key")
	}
}

func TestExtractFirstModeSucceeds(t *testing.T) {
	f := newFake()
	f.statuses["high_quality"] = []string{"queued", "processing", "processed"}
	f.text["high_quality"] = "TOTAL PREMIUM: R2,963.68"

	res, err := testExtractor(t, f).Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "TOTAL PREMIUM: R2,963.68" || res.Mode != "high_quality" || res.Method != extract.MethodWhisperer {
		t.Fatalf("unexpected result %+v", res)
	}
	if f.gotKey != "k-123" {
		t.Errorf("unstract-key = %q", f.gotKey)
	}
	if f.polls["high_quality"] != 3 {
		t.Errorf("polls = %d, want 3", f.polls["high_quality"])
	}
}

func TestExtractCascadesThroughModes(t *testing.T) {
	f := newFake()
	f.failMode["high_quality"] = http.StatusPaymentRequired
	f.statuses["low_cost"] = []string{"error"}
	f.text["form"] = "" // processed but empty
	f.text["native_text"] = "native text layer"

	res, err := testExtractor(t, f).Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Mode != "native_text" {
		t.Fatalf("mode = %q, want native_text", res.Mode)
	}
	want := []string{"high_quality", "low_cost", "form", "native_text"}
	if strings.Join(f.uploads, ",") != strings.Join(want, ",") {
		t.Fatalf("uploads = %v, want %v", f.uploads, want)
	}
}

func TestExtractAllModesFail(t *testing.T) {
	f := newFake()
	for _, m := range []string{"high_quality", "low_cost", "form", "native_text"} {
		f.failMode[m] = http.StatusInternalServerError
	}
	if _, err := testExtractor(t, f).Extract(context.Background(), doc); err == nil {
		t.Fatal("expected error when every mode fails")
	}
}

func TestExtractPollExhaustion(t *testing.T) {
	f := newFake()
	f.statuses["high_quality"] = []string{"processing", "processing", "processing", "processing", "processing", "processing"}
	f.text["low_cost"] = "from low cost"

	res, err := testExtractor(t, f).Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Mode != "low_cost" {
		t.Fatalf("mode = %q, want low_cost", res.Mode)
	}
	if f.polls["high_quality"] != 5 {
		t.Errorf("high_quality polls = %d, want 5", f.polls["high_quality"])
	}
}
