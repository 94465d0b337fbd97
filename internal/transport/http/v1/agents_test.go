package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/adapter/agentclient"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/config"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/registry"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/service"
	"github.com/vijaymuruvalugit/HiringAgentEM/policy"
	"github.com/vijaymuruvalugit/HiringAgentEM/tests/helpers"
)

func newTestHandler(t *testing.T, gatewayURL string, agents ...domain.AgentDefinition) *Handler {
	t.Helper()

	cfg := &config.Config{InvokeTimeout: 2 * time.Second, InvokeRetries: 1, MaxConcurrent: 4}
	db := helpers.NewTestSQLiteStore(t)
	client := agentclient.NewClient(gatewayURL, cfg.InvokeTimeout)
	reg, err := registry.New(agents, "")
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	svc := service.New(db, client, registry.NewHandle(reg), nil, cfg, policyEngine)
	return NewHandler(svc)
}

func testAgents() []domain.AgentDefinition {
	return []domain.AgentDefinition{
		{
			Name:         "hiring_summary_agent",
			Endpoint:     "/webhook/hiring-summary",
			Enabled:      true,
			Keywords:     []string{"summary", "hiring"},
			Description:  "Hiring Summary",
			DisplayGroup: domain.DisplayGroupHiringTracker,
		},
		{
			Name:         "offer_analysis_agent",
			Endpoint:     "/webhook/offer-analysis",
			Enabled:      true,
			Keywords:     []string{"offer"},
			Description:  "Offer Analysis",
			DisplayGroup: domain.DisplayGroupOfferFunnel,
		},
	}
}

func TestListAgents(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, "http://127.0.0.1:1", testAgents()...)

	req := httptest.NewRequest(http.MethodGet, "/v1/agents", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListAgents(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Agents []map[string]interface{} `json:"agents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(resp.Agents))
	}
	if resp.Agents[0]["name"] != "hiring_summary_agent" || resp.Agents[1]["name"] != "offer_analysis_agent" {
		t.Fatalf("unexpected agent order: %v", resp.Agents)
	}
	if resp.Agents[1]["display_group"] != "offer_funnel" {
		t.Fatalf("unexpected display_group: %v", resp.Agents[1])
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Fatalf("unexpected health response: %v", resp)
	}
}
