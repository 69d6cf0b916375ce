// Package async runs report generation off the request path.
package async

import (
	"context"
	"time"
)

// Job asks for one report of one comparison.
type Job struct {
	ComparisonID string
	Format       string // empty means the service default
	SubmittedAt  time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
