package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
)

// recordEvent appends an event to the batch trace and pushes it to live
// watchers. Store persistence is authoritative; the hub push is best-effort.
func (s *Service) recordEvent(ctx context.Context, batchID string, eventType domain.EventType, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &domain.Event{
		EventID: "evt_" + uuid.New().String()[:8],
		BatchID: batchID,
		Ts:      time.Now().UnixMilli(),
		Type:    eventType,
		Payload: payloadBytes,
	}

	if err := s.store.CreateEvent(ctx, event); err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.BroadcastJSON(batchID, map[string]interface{}{
			"type":     event.Type,
			"ts":       event.Ts,
			"batch_id": batchID,
			"payload":  json.RawMessage(payloadBytes),
		})
	}

	return nil
}
