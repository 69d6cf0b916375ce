// Package ingest collects quote PDFs from the local filesystem for batch runs.
package ingest

import "github.com/joseph-ayodele/quote-compare/internal/entity"

// FileResult is the per-file collection outcome.
type FileResult struct {
	Path         string
	Deduplicated bool // identical bytes already collected under another path
	HashHex      string
	Size         int64
	Err          string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Collected    uint32
	Deduplicated uint32
	Failed       uint32
}

// Batch is what a directory scan hands to the comparison service.
type Batch struct {
	Uploads []entity.Upload
	Results []FileResult
	Stats   DirStats
}
