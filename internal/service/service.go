// Package service implements the agent orchestration engine: matching
// uploaded files to agents, invoking them, normalizing the responses and
// consolidating recommendations across the batch.
package service

import (
	"context"

	"github.com/vijaymuruvalugit/HiringAgentEM/internal/config"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/hub"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/registry"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/repository"
	"github.com/vijaymuruvalugit/HiringAgentEM/policy"
)

// Invoker performs one agent invocation. Failures are part of the returned
// outcome, never an error.
type Invoker interface {
	Invoke(ctx context.Context, agent domain.AgentDefinition, file domain.UploadedFile) domain.InvocationOutcome
}

type Service struct {
	store        store.Store
	invoker      Invoker
	registry     *registry.Handle
	hub          *hub.Hub
	config       *config.Config
	policyEngine *policy.Engine
}

// New creates a service. hub may be nil when no progress fanout is wanted.
func New(store store.Store, invoker Invoker, reg *registry.Handle, h *hub.Hub, cfg *config.Config, policyEngine *policy.Engine) *Service {
	return &Service{
		store:        store,
		invoker:      invoker,
		registry:     reg,
		hub:          h,
		config:       cfg,
		policyEngine: policyEngine,
	}
}

// Agents returns the current registry contents in declaration order.
func (s *Service) Agents() []domain.AgentDefinition {
	return s.registry.Current().Agents()
}
