package llm

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// ModelDefaults describes a known model's output limits.
type ModelDefaults struct {
	ID              string `yaml:"-" json:"id"`
	DisplayName     string `yaml:"display_name" json:"display_name"`
	MaxOutputTokens int    `yaml:"max_output_tokens" json:"max_output_tokens"`
}

// Registry holds per-model defaults loaded from the embedded YAML file.
// Unknown models are allowed; they simply get no cap.
type Registry struct {
	models map[string]*ModelDefaults
	mu     sync.RWMutex
}

// NewRegistry creates a registry and loads the embedded model defaults.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		models: make(map[string]*ModelDefaults),
	}

	data, err := configFiles.ReadFile("config/models.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read model defaults: %w", err)
	}

	var file struct {
		Models map[string]*ModelDefaults `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model defaults: %w", err)
	}

	r.mu.Lock()
	for id, m := range file.Models {
		m.ID = id
		r.models[id] = m
	}
	r.mu.Unlock()

	return r, nil
}

// Lookup returns the defaults for a model id, or false if unknown.
func (r *Registry) Lookup(model string) (*ModelDefaults, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[model]
	return m, ok
}

// CapOutputTokens bounds the requested output length by the model's known
// limit. Unknown models pass the request through unchanged.
func (r *Registry) CapOutputTokens(model string, requested int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[model]
	if !ok || m.MaxOutputTokens <= 0 {
		return requested
	}
	if requested > m.MaxOutputTokens {
		return m.MaxOutputTokens
	}
	return requested
}
