package service

import (
	"context"
	"fmt"

	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
)

func (s *Service) GetBatch(ctx context.Context, batchID string) (*domain.Batch, error) {
	batch, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return batch, nil
}

func (s *Service) ListBatches(ctx context.Context, limit int) ([]domain.Batch, error) {
	batches, err := s.store.ListBatches(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, nil
}

func (s *Service) GetBatchEvents(ctx context.Context, batchID string, afterTs int64, types []string, limit int) ([]domain.Event, error) {
	events, err := s.store.GetEvents(ctx, batchID, afterTs, types, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch events: %w", err)
	}
	return events, nil
}

func (s *Service) GetBatchInvocations(ctx context.Context, batchID string) ([]domain.Invocation, error) {
	invocations, err := s.store.GetInvocations(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch invocations: %w", err)
	}
	return invocations, nil
}
