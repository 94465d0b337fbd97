// Package registry holds the declarative agent set and routes uploaded
// files to agents by filename.
package registry

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
)

// Registry is an immutable, declaration-ordered set of agent definitions.
type Registry struct {
	agents       []domain.AgentDefinition
	defaultAgent string
}

// New creates a registry from the given definitions. Order is preserved and
// becomes the match order. defaultAgent may be empty; when set it names the
// fallback agent for files that match nothing.
func New(defs []domain.AgentDefinition, defaultAgent string) (*Registry, error) {
	seen := make(map[string]bool, len(defs))
	agents := make([]domain.AgentDefinition, len(defs))
	for i, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("agent %d: name is required", i)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("duplicate agent name: %s", d.Name)
		}
		seen[d.Name] = true

		keywords := make([]string, len(d.Keywords))
		for j, kw := range d.Keywords {
			keywords[j] = strings.ToLower(kw)
		}
		d.Keywords = keywords
		agents[i] = d
	}

	if defaultAgent != "" && !seen[defaultAgent] {
		return nil, fmt.Errorf("default agent %q is not a declared agent", defaultAgent)
	}

	return &Registry{agents: agents, defaultAgent: defaultAgent}, nil
}

// FromConfig builds a registry from a validated configuration file.
func FromConfig(cfg *ConfigFile) (*Registry, error) {
	return New(cfg.Definitions(), cfg.DefaultAgent)
}

// Agents returns all definitions in declaration order.
func (r *Registry) Agents() []domain.AgentDefinition {
	out := make([]domain.AgentDefinition, len(r.agents))
	copy(out, r.agents)
	return out
}

// EnabledAgents returns the enabled definitions in declaration order.
func (r *Registry) EnabledAgents() []domain.AgentDefinition {
	var out []domain.AgentDefinition
	for _, a := range r.agents {
		if a.Enabled {
			out = append(out, a)
		}
	}
	return out
}

// Agent looks up a definition by name.
func (r *Registry) Agent(name string) (domain.AgentDefinition, bool) {
	for _, a := range r.agents {
		if a.Name == name {
			return a, true
		}
	}
	return domain.AgentDefinition{}, false
}

// Match returns the enabled agents that should process the given filename,
// in declaration order. An agent matches when any of its keywords is a
// substring of the lowercased filename, or when its normalized name appears
// in the normalized filename. Multiple matches are intentional fan-out; zero
// matches is a valid outcome. When nothing matches and a default agent is
// configured and enabled, it is returned as the sole match.
func (r *Registry) Match(filename string) []domain.AgentDefinition {
	lower := strings.ToLower(filename)
	normalized := normalizeName(filename)

	var matched []domain.AgentDefinition
	for _, a := range r.agents {
		if !a.Enabled {
			continue
		}
		if matchesAgent(a, lower, normalized) {
			matched = append(matched, a)
		}
	}

	if len(matched) == 0 && r.defaultAgent != "" {
		if fallback, ok := r.Agent(r.defaultAgent); ok && fallback.Enabled {
			matched = append(matched, fallback)
		}
	}
	return matched
}

func matchesAgent(a domain.AgentDefinition, lower, normalized string) bool {
	for _, kw := range a.Keywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	if norm := normalizeName(a.Name); norm != "" && strings.Contains(normalized, norm) {
		return true
	}
	return false
}

// normalizeName strips underscores and hyphens and lowercases, so that
// "Sourcing-Quality" in a filename matches agent "sourcing_quality_agent".
func normalizeName(s string) string {
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToLower(s)
}

// Handle holds the currently active registry and supports atomic
// replacement on reload. Swaps replace the whole set at once; a batch that
// snapshotted the previous registry keeps it for its full run.
type Handle struct {
	current atomic.Pointer[Registry]
}

// NewHandle creates a handle with the given initial registry.
func NewHandle(r *Registry) *Handle {
	h := &Handle{}
	h.current.Store(r)
	return h
}

// Current returns the active registry.
func (h *Handle) Current() *Registry {
	return h.current.Load()
}

// Swap atomically replaces the active registry.
func (h *Handle) Swap(r *Registry) {
	h.current.Store(r)
}
