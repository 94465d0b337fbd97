// Package domain defines the core domain models for the orchestrator.
package domain

// ResultStatus represents the normalization status of one agent result.
type ResultStatus string

const (
	ResultStatusOk       ResultStatus = "ok"
	ResultStatusDegraded ResultStatus = "degraded"
	ResultStatusFailed   ResultStatus = "failed"
)

// FailureKind classifies an invocation failure.
type FailureKind string

const (
	FailureTimeout           FailureKind = "timeout"
	FailureConnectionRefused FailureKind = "connection_refused"
	FailureHTTPError         FailureKind = "http_error"
	FailureMalformedBody     FailureKind = "malformed_body"
)

// DisplayGroup represents the presentation grouping of an agent.
type DisplayGroup string

const (
	DisplayGroupHiringTracker DisplayGroup = "hiring_tracker"
	DisplayGroupOfferFunnel   DisplayGroup = "offer_funnel"
)

// SectionType represents the type of a result section. Agents may emit
// types outside this set; section data is passed through unvalidated.
type SectionType string

const (
	SectionTypeTable  SectionType = "table"
	SectionTypeMetric SectionType = "metric"
	SectionTypeChart  SectionType = "chart"
	SectionTypeText   SectionType = "text"
)

// BatchStatus represents the status of a batch.
type BatchStatus string

const (
	BatchStatusRunning   BatchStatus = "RUNNING"
	BatchStatusCompleted BatchStatus = "COMPLETED"
)

// EventType represents the type of a batch progress event.
type EventType string

const (
	EventTypeBatchStarted       EventType = "batch_started"
	EventTypeFileNoMatch        EventType = "file_no_match"
	EventTypePolicyDecision     EventType = "policy_decision"
	EventTypeAgentInvokeStarted EventType = "agent_invoke_started"
	EventTypeAgentInvokeRetried EventType = "agent_invoke_retried"
	EventTypeAgentInvokeDone    EventType = "agent_invoke_done"
	EventTypeBatchDone          EventType = "batch_done"
)
