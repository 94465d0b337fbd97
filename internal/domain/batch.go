package domain

import (
	"encoding/json"
	"time"
)

// BatchResult is the complete output of one batch run: one AgentResult per
// matched (file, agent) pair in match order, plus the cross-agent
// consolidated recommendation list. It lives only in memory; result payloads
// are never persisted.
type BatchResult struct {
	BatchID                     string        `json:"batch_id"`
	Results                     []AgentResult `json:"results"`
	ConsolidatedRecommendations []string      `json:"consolidated_recommendations"`
	Summary                     BatchSummary  `json:"summary"`
}

// BatchSummary aggregates per-batch counts for reporting.
type BatchSummary struct {
	FileCount     int   `json:"file_count"`
	TaskCount     int   `json:"task_count"`
	NoMatchCount  int   `json:"no_match_count"`
	OkCount       int   `json:"ok_count"`
	DegradedCount int   `json:"degraded_count"`
	FailedCount   int   `json:"failed_count"`
	DurationMs    int64 `json:"duration_ms"`
}

// Batch is the persisted metadata row for one batch run.
type Batch struct {
	BatchID       string      `json:"batch_id"`
	Status        BatchStatus `json:"status"`
	FileCount     int         `json:"file_count"`
	TaskCount     int         `json:"task_count"`
	NoMatchCount  int         `json:"no_match_count"`
	OkCount       int         `json:"ok_count"`
	DegradedCount int         `json:"degraded_count"`
	FailedCount   int         `json:"failed_count"`
	StartedAt     time.Time   `json:"started_at"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
}

// Invocation is the persisted metadata row for one (file, agent) task.
// Result payloads are deliberately absent.
type Invocation struct {
	InvocationID string       `json:"invocation_id"`
	BatchID      string       `json:"batch_id"`
	FileName     string       `json:"file_name"`
	AgentName    string       `json:"agent_name"`
	Status       ResultStatus `json:"status"`
	StatusReason string       `json:"status_reason,omitempty"`
	Attempts     int          `json:"attempts"`
	DurationMs   int64        `json:"duration_ms"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Event is a trace event recorded against a batch.
type Event struct {
	EventID string          `json:"event_id"`
	BatchID string          `json:"batch_id"`
	Ts      int64           `json:"ts"` // Unix milliseconds
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// BatchStartedPayload is the payload for batch_started events.
type BatchStartedPayload struct {
	FileCount int `json:"file_count"`
	TaskCount int `json:"task_count"`
}

// FileNoMatchPayload is the payload for file_no_match events.
type FileNoMatchPayload struct {
	FileName string `json:"file_name"`
}

// PolicyDecisionPayload is the payload for policy_decision events.
type PolicyDecisionPayload struct {
	FileName  string `json:"file_name"`
	AgentName string `json:"agent_name"`
	Decision  string `json:"decision"`
	Reason    string `json:"reason,omitempty"`
}

// AgentInvokeStartedPayload is the payload for agent_invoke_started events.
type AgentInvokeStartedPayload struct {
	FileName  string `json:"file_name"`
	AgentName string `json:"agent_name"`
}

// AgentInvokeRetriedPayload is the payload for agent_invoke_retried events.
type AgentInvokeRetriedPayload struct {
	FileName  string `json:"file_name"`
	AgentName string `json:"agent_name"`
	Attempt   int    `json:"attempt"`
	Reason    string `json:"reason"`
}

// AgentInvokeDonePayload is the payload for agent_invoke_done events.
type AgentInvokeDonePayload struct {
	FileName   string       `json:"file_name"`
	AgentName  string       `json:"agent_name"`
	Status     ResultStatus `json:"status"`
	Reason     string       `json:"reason,omitempty"`
	DurationMs int64        `json:"duration_ms"`
}

// BatchDonePayload is the payload for batch_done events.
type BatchDonePayload struct {
	OkCount       int   `json:"ok_count"`
	DegradedCount int   `json:"degraded_count"`
	FailedCount   int   `json:"failed_count"`
	NoMatchCount  int   `json:"no_match_count"`
	DurationMs    int64 `json:"duration_ms"`
}
