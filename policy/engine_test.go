package policy

import (
	"context"
	"testing"
)

func TestDefaultPolicyAllowsSmallFiles(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	decision, err := engine.Evaluate(ctx, map[string]interface{}{
		"agent":      "sourcing_quality_agent",
		"file_name":  "Summary.csv",
		"size_bytes": 1024,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision.Decision != DecisionAllow {
		t.Fatalf("expected allow, got %+v", decision)
	}
}

func TestDefaultPolicyBlocksOversizedFiles(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	decision, err := engine.Evaluate(ctx, map[string]interface{}{
		"agent":      "sourcing_quality_agent",
		"file_name":  "huge.csv",
		"size_bytes": 11 * 1024 * 1024,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision.Decision != DecisionBlock {
		t.Fatalf("expected block, got %+v", decision)
	}
	if decision.Reason == "" {
		t.Fatalf("expected a block reason")
	}
}

func TestNewEngineRejectsInvalidPolicy(t *testing.T) {
	if _, err := NewEngine(context.Background(), "not rego at all {"); err == nil {
		t.Fatalf("expected error for invalid policy")
	}
}

func TestEvaluateCustomPolicy(t *testing.T) {
	const policy = `
package upload_policy

default result := {"decision": "allow", "reason": ""}

result := {"decision": "block", "reason": "agent disabled for uploads"} if {
	input.agent == "panel_load_balancer"
}
`
	ctx := context.Background()
	engine, err := NewEngine(ctx, policy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	decision, err := engine.Evaluate(ctx, map[string]interface{}{
		"agent":      "panel_load_balancer",
		"file_name":  "Panel.csv",
		"size_bytes": 10,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision.Decision != DecisionBlock || decision.Reason != "agent disabled for uploads" {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}
