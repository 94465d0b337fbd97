package domain

import (
	"encoding/json"
	"fmt"
)

// InvocationOutcome is the result of one agent invocation: either a raw
// response body or a typed failure, never both.
type InvocationOutcome struct {
	RawBody json.RawMessage
	Failure *InvocationFailure
}

// OK reports whether the invocation produced a response body.
func (o InvocationOutcome) OK() bool {
	return o.Failure == nil
}

// InvocationFailure describes why an invocation produced no usable body.
type InvocationFailure struct {
	Kind       FailureKind `json:"kind"`
	StatusCode int         `json:"status_code,omitempty"`
	Detail     string      `json:"detail,omitempty"`
}

// Reason renders the failure as a single human-readable string.
func (f *InvocationFailure) Reason() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// Section is one displayable unit inside an agent result. Data is carried
// verbatim: values are never coerced or reformatted here.
type Section struct {
	Type  SectionType     `json:"type"`
	Title string          `json:"title"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// AgentResult is the canonical normalized record for one (file, agent)
// invocation. It is constructed once by the normalizer and immutable after.
// A failed result always has empty sections, insights and recommendations.
type AgentResult struct {
	AgentName       string       `json:"agent_name"`
	DisplayTitle    string       `json:"display_title"`
	DisplayGroup    DisplayGroup `json:"display_group"`
	FileName        string       `json:"file_name"`
	Sections        []Section    `json:"sections"`
	Insights        []string     `json:"insights"`
	Recommendations []string     `json:"recommendations"`
	Status          ResultStatus `json:"status"`
	StatusReason    string       `json:"status_reason,omitempty"`
}
