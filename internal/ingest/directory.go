package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
)

type DirOptions struct {
	SkipHidden  bool
	Recursive   bool
	MaxFileSize int64 // defaults to constants.MaxFileSizeDefault
	Logger      *slog.Logger
}

// CollectDirectory walks root in lexical order and loads every PDF as an
// upload. Byte-identical files are collected once. Oversize or unreadable
// files are reported in the results and left out of the batch.
func CollectDirectory(ctx context.Context, root string, opts DirOptions) (Batch, error) {
	if strings.TrimSpace(root) == "" {
		return Batch{}, errors.New("root path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = constants.MaxFileSizeDefault
	}

	var b Batch
	seen := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.Stats.Scanned++
		if walkErr != nil {
			b.Results = append(b.Results, FileResult{Path: path, Err: walkErr.Error()})
			b.Stats.Failed++
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !opts.Recursive || (opts.SkipHidden && IsHidden(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if opts.SkipHidden && IsHidden(path) {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		b.Stats.Matched++

		res, data, err := readFile(path, maxSize)
		if err != nil {
			res.Err = err.Error()
			b.Results = append(b.Results, res)
			b.Stats.Failed++
			logger.Warn("ingest.file.skipped", "path", path, "error", err)
			return nil
		}
		if first, dup := seen[res.HashHex]; dup {
			res.Deduplicated = true
			b.Results = append(b.Results, res)
			b.Stats.Deduplicated++
			logger.Info("ingest.file.duplicate", "path", path, "same_as", first)
			return nil
		}
		seen[res.HashHex] = path
		b.Results = append(b.Results, res)
		b.Uploads = append(b.Uploads, entity.Upload{
			Name:        filepath.Base(path),
			ContentType: constants.ContentTypePDF,
			Data:        data,
		})
		b.Stats.Collected++
		return nil
	})
	if err != nil {
		return b, fmt.Errorf("walk: %w", err)
	}
	logger.Info("ingest.dir.ok",
		"root", root,
		"matched", b.Stats.Matched,
		"collected", b.Stats.Collected,
		"deduplicated", b.Stats.Deduplicated,
		"failed", b.Stats.Failed,
	)
	return b, nil
}

func readFile(path string, maxSize int64) (FileResult, []byte, error) {
	res := FileResult{Path: path}
	f, err := os.Open(path)
	if err != nil {
		return res, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return res, nil, err
	}
	res.Size = info.Size()
	if res.Size > maxSize {
		return res, nil, fmt.Errorf("file size %d exceeds the %d byte limit", res.Size, maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return res, nil, err
	}
	if int64(len(data)) > maxSize {
		return res, nil, fmt.Errorf("file grew past the %d byte limit while reading", maxSize)
	}
	sum := sha256.Sum256(data)
	res.HashHex = hex.EncodeToString(sum[:])
	return res, data, nil
}
