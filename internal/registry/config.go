package registry

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
)

// ConfigFile is the parsed agents configuration file.
type ConfigFile struct {
	Gateway      GatewayConfig `yaml:"gateway"`
	DefaultAgent string        `yaml:"default_agent"`
	Agents       []AgentEntry  `yaml:"agents"`
}

// GatewayConfig holds settings for the remote workflow gateway.
type GatewayConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// AgentEntry is one agent declaration. Agents are a YAML sequence because
// declaration order is the match order.
type AgentEntry struct {
	Name         string   `yaml:"name"`
	Endpoint     string   `yaml:"endpoint"`
	Enabled      bool     `yaml:"enabled"`
	Keywords     []string `yaml:"keywords"`
	Description  string   `yaml:"description"`
	DisplayGroup string   `yaml:"display_group"`
}

// DefaultBaseURL is used when the config omits gateway.base_url.
const DefaultBaseURL = "http://localhost:5678"

// LoadConfig reads and parses an agents configuration file.
func LoadConfig(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML data into a ConfigFile and validates it.
func ParseConfig(data []byte) (*ConfigFile, error) {
	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}

// ValidateConfig validates an agents configuration for correctness.
func ValidateConfig(cfg *ConfigFile) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if len(cfg.Agents) == 0 {
		return fmt.Errorf("at least one agent is required")
	}
	if cfg.Gateway.TimeoutSeconds < 0 {
		return fmt.Errorf("gateway.timeout_seconds cannot be negative")
	}

	names := make(map[string]bool)
	for i, a := range cfg.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent %d: name is required", i)
		}
		if names[a.Name] {
			return fmt.Errorf("duplicate agent name: %s", a.Name)
		}
		names[a.Name] = true

		if a.Endpoint == "" {
			return fmt.Errorf("agent %s: endpoint is required", a.Name)
		}
		if a.DisplayGroup != "" && !validDisplayGroup(a.DisplayGroup) {
			return fmt.Errorf("agent %s: invalid display_group %q", a.Name, a.DisplayGroup)
		}
	}

	if cfg.DefaultAgent != "" && !names[cfg.DefaultAgent] {
		return fmt.Errorf("default_agent %q is not a declared agent", cfg.DefaultAgent)
	}
	return nil
}

func validDisplayGroup(g string) bool {
	switch domain.DisplayGroup(g) {
	case domain.DisplayGroupHiringTracker, domain.DisplayGroupOfferFunnel:
		return true
	}
	return false
}

// BaseURL returns the configured gateway base URL or the default.
func (c *ConfigFile) BaseURL() string {
	if c.Gateway.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimSuffix(c.Gateway.BaseURL, "/")
}

// Definitions converts config entries into immutable agent definitions,
// preserving declaration order. Keywords are lowercased here once.
func (c *ConfigFile) Definitions() []domain.AgentDefinition {
	defs := make([]domain.AgentDefinition, 0, len(c.Agents))
	for _, a := range c.Agents {
		keywords := make([]string, 0, len(a.Keywords))
		for _, kw := range a.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}

		group := domain.DisplayGroup(a.DisplayGroup)
		if group == "" {
			group = domain.DisplayGroupHiringTracker
		}

		defs = append(defs, domain.AgentDefinition{
			Name:         a.Name,
			Endpoint:     a.Endpoint,
			Enabled:      a.Enabled,
			Keywords:     keywords,
			Description:  a.Description,
			DisplayGroup: group,
		})
	}
	return defs
}
