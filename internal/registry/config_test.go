package registry

import (
	"strings"
	"testing"
)

const sampleConfig = `
gateway:
  base_url: http://localhost:5678
  timeout_seconds: 90
default_agent: sourcing_quality_agent
agents:
  - name: sourcing_quality_agent
    endpoint: /webhook/sourcing-quality
    enabled: true
    keywords: [Sourcing, summary]
    description: Sourcing Quality Analysis
    display_group: hiring_tracker
  - name: rejection_pattern_agent
    endpoint: /webhook/rejection-pattern
    enabled: true
    keywords: [rejection, funnel]
    display_group: offer_funnel
  - name: panel_load_balancer
    endpoint: /webhook/panel-load
    enabled: false
    keywords: [panel, feedback]
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	if cfg.BaseURL() != "http://localhost:5678" {
		t.Fatalf("unexpected base url: %s", cfg.BaseURL())
	}
	if cfg.Gateway.TimeoutSeconds != 90 {
		t.Fatalf("unexpected timeout: %d", cfg.Gateway.TimeoutSeconds)
	}
	if cfg.DefaultAgent != "sourcing_quality_agent" {
		t.Fatalf("unexpected default agent: %s", cfg.DefaultAgent)
	}

	defs := cfg.Definitions()
	if len(defs) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(defs))
	}
	// Declaration order must survive parsing.
	if defs[0].Name != "sourcing_quality_agent" || defs[1].Name != "rejection_pattern_agent" {
		t.Fatalf("unexpected order: %s, %s", defs[0].Name, defs[1].Name)
	}
	// Keywords are lowercased at load.
	if defs[0].Keywords[0] != "sourcing" {
		t.Fatalf("expected lowercased keyword, got %q", defs[0].Keywords[0])
	}
	if defs[2].Enabled {
		t.Fatalf("expected panel_load_balancer disabled")
	}
	// display_group defaults to hiring_tracker when omitted.
	if defs[2].DisplayGroup != "hiring_tracker" {
		t.Fatalf("unexpected display group: %s", defs[2].DisplayGroup)
	}
}

func TestParseConfigTrailingSlashBaseURL(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
gateway:
  base_url: http://gateway:5678/
agents:
  - name: a
    endpoint: /webhook/a
    enabled: true
`))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if cfg.BaseURL() != "http://gateway:5678" {
		t.Fatalf("expected trimmed base url, got %s", cfg.BaseURL())
	}
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "no agents",
			yaml: "gateway:\n  base_url: http://x\n",
			want: "at least one agent",
		},
		{
			name: "missing endpoint",
			yaml: "agents:\n  - name: a\n    enabled: true\n",
			want: "endpoint is required",
		},
		{
			name: "duplicate name",
			yaml: "agents:\n  - name: a\n    endpoint: /a\n  - name: a\n    endpoint: /b\n",
			want: "duplicate agent name",
		},
		{
			name: "bad display group",
			yaml: "agents:\n  - name: a\n    endpoint: /a\n    display_group: nope\n",
			want: "invalid display_group",
		},
		{
			name: "unknown default agent",
			yaml: "default_agent: ghost\nagents:\n  - name: a\n    endpoint: /a\n",
			want: "not a declared agent",
		},
		{
			name: "not yaml",
			yaml: "{{{",
			want: "failed to parse YAML",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.yaml))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got: %v", tc.want, err)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("does-not-exist.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
