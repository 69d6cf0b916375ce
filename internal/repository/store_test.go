package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func stores(t *testing.T) map[string]ComparisonStore {
	t.Helper()
	drv, err := OpenSQLite(":memory:", quiet)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlite, err := NewSQLStore(context.Background(), drv, nil, quiet)
	if err != nil {
		t.Fatalf("NewSQLStore: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]ComparisonStore{"memory": NewMemoryStore(), "sqlite": sqlite}
}

func sample(id string, created time.Time) entity.Comparison {
	return entity.Comparison{
		ID:            id,
		CreatedAt:     created.UTC(),
		Status:        constants.StatusProcessing,
		FileNames:     []string{"a.pdf", "b.pdf"},
		TotalPremiums: []string{"R100.00", "unknown"},
		Quotes: []entity.Quote{
			{FileName: "a.pdf", Vendor: "Santam", TotalPremium: "R100.00", Sections: map[string]entity.PolicySection{
				"Fire": {Included: "Y", Premium: "R40.00", SubSections: []string{"Contents"}},
			}},
			{FileName: "b.pdf", Vendor: "Extraction failed", TotalPremium: "unknown", Sections: map[string]entity.PolicySection{}, Error: "boom"},
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			want := sample("c-1", base)
			if err := s.Put(ctx, want); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := s.Get(ctx, "c-1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("round trip (-want +got):\n%s", diff)
			}

			if err := s.Put(ctx, want); !errors.Is(err, common.ErrConflict) {
				t.Fatalf("second Put err = %v, want conflict", err)
			}
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "missing"); !errors.Is(err, common.ErrNotFound) {
				t.Fatalf("Get err = %v", err)
			}
			_, err := s.Update(ctx, "missing", func(*entity.Comparison) error { return nil })
			if !errors.Is(err, common.ErrNotFound) {
				t.Fatalf("Update err = %v", err)
			}
			if err := s.Ping(ctx); err != nil {
				t.Fatalf("Ping: %v", err)
			}
		})
	}
}

func TestStoreUpdateAndList(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i := range 3 {
				if err := s.Put(ctx, sample(fmt.Sprintf("c-%d", i), base.Add(time.Duration(i)*time.Minute))); err != nil {
					t.Fatal(err)
				}
			}
			updated, err := s.Update(ctx, "c-0", func(c *entity.Comparison) error {
				c.Status = constants.StatusCompleted
				c.ReportGenerated = true
				return nil
			})
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
			if updated.Status != constants.StatusCompleted || !updated.ReportGenerated {
				t.Fatalf("updated = %+v", updated)
			}

			stop := errors.New("stop")
			if _, err := s.Update(ctx, "c-1", func(c *entity.Comparison) error {
				c.Status = constants.StatusFailed
				return stop
			}); !errors.Is(err, stop) {
				t.Fatalf("aborted update err = %v", err)
			}
			if c, _ := s.Get(ctx, "c-1"); c.Status != constants.StatusProcessing {
				t.Fatalf("aborted update was saved: %s", c.Status)
			}

			list, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var ids []string
			for _, c := range list {
				ids = append(ids, c.ID)
			}
			if diff := cmp.Diff([]string{"c-2", "c-1", "c-0"}, ids); diff != "" {
				t.Fatalf("order (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Put(ctx, sample("c-1", time.Now()))

	got, _ := s.Get(ctx, "c-1")
	got.Quotes[0].Sections["Fire"] = entity.PolicySection{Included: "N"}
	got.FileNames[0] = "changed.pdf"

	again, _ := s.Get(ctx, "c-1")
	if again.FileNames[0] != "a.pdf" || again.Quotes[0].Sections["Fire"].Included != "Y" {
		t.Fatalf("store shares memory with callers: %+v", again)
	}
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.Put(ctx, sample("c-1", time.Now()))
			var wg sync.WaitGroup
			for range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = s.Update(ctx, "c-1", func(c *entity.Comparison) error {
						c.FileNames = append(c.FileNames, "x.pdf")
						return nil
					})
				}()
			}
			wg.Wait()
			c, _ := s.Get(ctx, "c-1")
			if len(c.FileNames) != 22 {
				t.Fatalf("file names = %d, want 22", len(c.FileNames))
			}
		})
	}
}

func TestSQLiteSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quotes.db")

	open := func() ComparisonStore {
		t.Helper()
		drv, err := OpenSQLite(path, quiet)
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		s, err := NewSQLStore(ctx, drv, nil, quiet)
		if err != nil {
			t.Fatalf("NewSQLStore: %v", err)
		}
		return s
	}

	first := open()
	want := sample("11111111-2222-4333-8444-555555555555", time.Unix(1700000000, 0))
	if err := first.Put(ctx, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := open()
	t.Cleanup(func() { _ = second.Close() })
	got, err := second.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.ID != want.ID || len(got.Quotes) != len(want.Quotes) {
		t.Fatalf("reopened comparison = %+v", got)
	}
}
