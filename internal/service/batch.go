package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/metrics"
	"github.com/vijaymuruvalugit/HiringAgentEM/policy"
)

// task is one (file, agent) invocation unit. index is the task's position in
// logical batch order: files in upload order, matched agents in declaration
// order within a file.
type task struct {
	index int
	file  domain.UploadedFile
	agent domain.AgentDefinition
}

// RunBatch matches the uploaded files against the agent registry, invokes
// every matched (file, agent) pair and returns the normalized results in
// logical order. Task failures never abort the batch; RunBatch errors only
// on empty input or when the batch row cannot be created.
func (s *Service) RunBatch(ctx context.Context, files []domain.UploadedFile) (*domain.BatchResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one file is required")
	}

	// Snapshot the registry so a concurrent reload cannot split the batch
	// across two configurations.
	reg := s.registry.Current()

	batchID := "batch_" + uuid.New().String()[:8]
	startedAt := time.Now()

	// Build the task list in logical order.
	var tasks []task
	var unmatched []string
	for _, file := range files {
		matched := reg.Match(file.Filename)
		if len(matched) == 0 {
			unmatched = append(unmatched, file.Filename)
			continue
		}
		for _, agent := range matched {
			tasks = append(tasks, task{index: len(tasks), file: file, agent: agent})
		}
	}

	batch := &domain.Batch{
		BatchID:      batchID,
		Status:       domain.BatchStatusRunning,
		FileCount:    len(files),
		TaskCount:    len(tasks),
		NoMatchCount: len(unmatched),
		StartedAt:    startedAt,
	}
	if err := s.store.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	if err := s.recordEvent(ctx, batchID, domain.EventTypeBatchStarted, domain.BatchStartedPayload{
		FileCount: len(files),
		TaskCount: len(tasks),
	}); err != nil {
		log.Printf("ERROR: failed to record batch_started event: %v", err)
	}

	for _, name := range unmatched {
		metrics.UnmatchedFilesTotal.Inc()
		log.Printf("WARN: no agent matched file %q", name)
		if err := s.recordEvent(ctx, batchID, domain.EventTypeFileNoMatch, domain.FileNoMatchPayload{
			FileName: name,
		}); err != nil {
			log.Printf("ERROR: failed to record file_no_match event: %v", err)
		}
	}

	// Run the tasks on a bounded worker pool. Each task writes its result at
	// its own index, so completion order never changes output order.
	results := make([]domain.AgentResult, len(tasks))
	workers := s.config.MaxConcurrent
	if workers < 1 {
		workers = 1
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	taskCh := make(chan task)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskCh {
				results[t.index] = s.runTask(ctx, batchID, t)
			}
		}()
	}
	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)
	wg.Wait()

	summary := domain.BatchSummary{
		FileCount:    len(files),
		TaskCount:    len(tasks),
		NoMatchCount: len(unmatched),
		DurationMs:   time.Since(startedAt).Milliseconds(),
	}
	for _, result := range results {
		switch result.Status {
		case domain.ResultStatusOk:
			summary.OkCount++
		case domain.ResultStatusDegraded:
			summary.DegradedCount++
		case domain.ResultStatusFailed:
			summary.FailedCount++
		}
	}

	if err := s.store.UpdateBatchCompleted(ctx, batchID, domain.BatchStatusCompleted, summary); err != nil {
		log.Printf("ERROR: failed to update batch status: %v", err)
	}
	metrics.BatchesTotal.Inc()

	if err := s.recordEvent(ctx, batchID, domain.EventTypeBatchDone, domain.BatchDonePayload{
		OkCount:       summary.OkCount,
		DegradedCount: summary.DegradedCount,
		FailedCount:   summary.FailedCount,
		NoMatchCount:  summary.NoMatchCount,
		DurationMs:    summary.DurationMs,
	}); err != nil {
		log.Printf("ERROR: failed to record batch_done event: %v", err)
	}

	return &domain.BatchResult{
		BatchID:                     batchID,
		Results:                     results,
		ConsolidatedRecommendations: ConsolidateRecommendations(results),
		Summary:                     summary,
	}, nil
}

// runTask gates, invokes and normalizes one task.
func (s *Service) runTask(ctx context.Context, batchID string, t task) domain.AgentResult {
	start := time.Now()

	// Policy gate. A block produces a failed result without a network call;
	// evaluation errors fail open.
	if s.policyEngine != nil {
		decision, err := s.policyEngine.Evaluate(ctx, map[string]interface{}{
			"agent":      t.agent.Name,
			"file_name":  t.file.Filename,
			"size_bytes": len(t.file.Content),
		})
		if err != nil {
			log.Printf("ERROR: policy evaluation failed for %s/%s: %v", t.file.Filename, t.agent.Name, err)
		} else if decision.Decision == policy.DecisionBlock {
			metrics.PolicyBlocksTotal.Inc()
			log.Printf("WARN: policy blocked %s/%s: %s", t.file.Filename, t.agent.Name, decision.Reason)
			if err := s.recordEvent(ctx, batchID, domain.EventTypePolicyDecision, domain.PolicyDecisionPayload{
				FileName:  t.file.Filename,
				AgentName: t.agent.Name,
				Decision:  decision.Decision,
				Reason:    decision.Reason,
			}); err != nil {
				log.Printf("ERROR: failed to record policy_decision event: %v", err)
			}

			result := newResult(t.agent, t.file.Filename)
			result.Status = domain.ResultStatusFailed
			result.StatusReason = "blocked_by_policy: " + decision.Reason
			s.finishTask(ctx, batchID, t, result, 0, time.Since(start))
			return result
		}
	}

	if err := s.recordEvent(ctx, batchID, domain.EventTypeAgentInvokeStarted, domain.AgentInvokeStartedPayload{
		FileName:  t.file.Filename,
		AgentName: t.agent.Name,
	}); err != nil {
		log.Printf("ERROR: failed to record agent_invoke_started event: %v", err)
	}

	outcome := s.invoker.Invoke(ctx, t.agent, t.file)
	attempts := 1
	for attempts <= s.config.InvokeRetries && retryable(outcome) {
		log.Printf("WARN: retrying %s/%s after %s", t.file.Filename, t.agent.Name, outcome.Failure.Reason())
		if err := s.recordEvent(ctx, batchID, domain.EventTypeAgentInvokeRetried, domain.AgentInvokeRetriedPayload{
			FileName:  t.file.Filename,
			AgentName: t.agent.Name,
			Attempt:   attempts + 1,
			Reason:    outcome.Failure.Reason(),
		}); err != nil {
			log.Printf("ERROR: failed to record agent_invoke_retried event: %v", err)
		}
		outcome = s.invoker.Invoke(ctx, t.agent, t.file)
		attempts++
	}

	result := Normalize(t.agent, t.file.Filename, outcome)
	s.finishTask(ctx, batchID, t, result, attempts, time.Since(start))
	return result
}

// finishTask records the invocation row, metrics and terminal event for one
// task. attempts is 0 when the task never reached the network.
func (s *Service) finishTask(ctx context.Context, batchID string, t task, result domain.AgentResult, attempts int, elapsed time.Duration) {
	durationMs := elapsed.Milliseconds()

	metrics.InvocationsTotal.WithLabelValues(t.agent.Name, string(result.Status)).Inc()
	metrics.InvocationDurationMs.WithLabelValues(t.agent.Name).Observe(float64(durationMs))

	inv := &domain.Invocation{
		InvocationID: "inv_" + uuid.New().String()[:8],
		BatchID:      batchID,
		FileName:     t.file.Filename,
		AgentName:    t.agent.Name,
		Status:       result.Status,
		StatusReason: result.StatusReason,
		Attempts:     attempts,
		DurationMs:   durationMs,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateInvocation(ctx, inv); err != nil {
		log.Printf("ERROR: failed to save invocation: %v", err)
	}

	if err := s.recordEvent(ctx, batchID, domain.EventTypeAgentInvokeDone, domain.AgentInvokeDonePayload{
		FileName:   t.file.Filename,
		AgentName:  t.agent.Name,
		Status:     result.Status,
		Reason:     result.StatusReason,
		DurationMs: durationMs,
	}); err != nil {
		log.Printf("ERROR: failed to record agent_invoke_done event: %v", err)
	}
}

// retryable reports whether a failure may be retried: timeouts and refused
// connections only. HTTP errors and malformed bodies are never retried.
func retryable(outcome domain.InvocationOutcome) bool {
	if outcome.OK() {
		return false
	}
	switch outcome.Failure.Kind {
	case domain.FailureTimeout, domain.FailureConnectionRefused:
		return true
	}
	return false
}
