// Package storage keeps rendered reports on the local filesystem or in S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/quote-compare/internal/common"
)

// Storage saves and serves report files by flat name.
type Storage interface {
	// Upload stores data under name, replacing any previous object.
	Upload(ctx context.Context, name, contentType string, data io.Reader) error
	// Download returns common.ErrNotFound for unknown names.
	Download(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// FromConfig maps the service configuration onto StorageConfig.
func FromConfig(c common.StorageConfig) StorageConfig {
	return StorageConfig{
		Type:         StorageType(c.Type),
		LocalPath:    c.LocalPath,
		S3Bucket:     c.S3Bucket,
		S3Region:     c.S3Region,
		AWSAccessKey: c.AWSAccessKey,
		AWSSecretKey: c.AWSSecretKey,
	}
}

// ValidName rejects anything that is not a plain file name.
func ValidName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return common.InvalidInputf("invalid report name %q", name)
	}
	return nil
}

// ContentType determines content type from a report name
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
