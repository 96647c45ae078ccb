package storage

import (
	"context"

	"github.com/Caia-Tech/caia-legal-corpus/pkg/document"
)

// Store persists extracted documents as artifacts plus a corpus record.
type Store interface {
	Persist(ctx context.Context, doc *document.ExtractedDocument, title string) (*document.Record, error)
	Records() ([]document.Record, error)
}

// StorageMetrics provides telemetry for storage operations
type StorageMetrics struct {
	OperationType string
	Duration      int64 // nanoseconds
	Success       bool
	Bytes         int
	Error         error
}

// MetricsCollector receives storage operation metrics
type MetricsCollector interface {
	RecordMetric(metric StorageMetrics)
}
