// Package policy evaluates the upload policy gate.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Decisions the upload policy may return.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Decision is the outcome of one policy evaluation.
type Decision struct {
	Decision string
	Reason   string
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.upload_policy.result"),
		rego.Module("upload_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the upload policy for one (file, agent) task.
// Input is a map with keys: agent, file_name, size_bytes.
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (Decision, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// No rule matched and the policy defines no default; treat as allow.
		return Decision{Decision: DecisionAllow, Reason: "default"}, nil
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return Decision{}, fmt.Errorf("policy result is not an object: %T", results[0].Expressions[0].Value)
	}

	var decision Decision
	if s, ok := obj["decision"].(string); ok {
		decision.Decision = s
	}
	if s, ok := obj["reason"].(string); ok {
		decision.Reason = s
	}
	if decision.Decision == "" {
		return Decision{}, fmt.Errorf("policy result has no decision field")
	}
	return decision, nil
}

// DefaultPolicy is the default policy content: allow everything except
// uploads larger than 10 MiB.
const DefaultPolicy = `
package upload_policy

default result := {"decision": "allow", "reason": ""}

result := {"decision": "block", "reason": "file exceeds 10 MiB upload limit"} if {
	input.size_bytes > 10485760
}
`
