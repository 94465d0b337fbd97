// Package store defines the storage interface and implementations.
//
// Only operational metadata is persisted: batch rows, invocation rows and
// progress events. Normalized result payloads live in memory for the
// duration of one batch and are never written here.
package store

import (
	"context"

	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// Batch operations
	CreateBatch(ctx context.Context, batch *domain.Batch) error
	GetBatch(ctx context.Context, batchID string) (*domain.Batch, error)
	ListBatches(ctx context.Context, limit int) ([]domain.Batch, error)
	UpdateBatchCompleted(ctx context.Context, batchID string, status domain.BatchStatus, summary domain.BatchSummary) error

	// Invocation operations
	CreateInvocation(ctx context.Context, inv *domain.Invocation) error
	GetInvocations(ctx context.Context, batchID string) ([]domain.Invocation, error)

	// Event operations
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEvents(ctx context.Context, batchID string, afterTs int64, types []string, limit int) ([]domain.Event, error)

	// Lifecycle
	Close() error
}
