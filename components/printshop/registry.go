package printshop

import (
	"fmt"
	"sync"
)

// PanelDefinition describes a dashboard panel. Registration order is display
// order.
type PanelDefinition struct {
	Code          string
	Title         string
	Configuration map[string]any
}

// ProviderRegistry stores panel definitions and their providers.
type ProviderRegistry interface {
	RegisterDefinition(def PanelDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (PanelDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []PanelDefinition
}

// Registry implements ProviderRegistry and keeps registration order.
type Registry struct {
	mu          sync.RWMutex
	order       []string
	definitions map[string]PanelDefinition
	providers   map[string]Provider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		definitions: map[string]PanelDefinition{},
		providers:   map[string]Provider{},
	}
}

// NewDefaultRegistry builds a registry holding the standard dashboard panels
// backed by repo.
func NewDefaultRegistry(repo DashboardRepository, charts *EChartsProvider) (*Registry, error) {
	reg := NewRegistry()
	for _, def := range DefaultPanelDefinitions() {
		if err := reg.RegisterDefinition(def); err != nil {
			return nil, err
		}
	}
	for code, provider := range defaultProviders(repo, charts) {
		if err := reg.RegisterProvider(code, provider); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// RegisterDefinition stores panel metadata. Re-registering a code replaces the
// definition but keeps its original position.
func (r *Registry) RegisterDefinition(def PanelDefinition) error {
	if def.Code == "" {
		return fmt.Errorf("panel definition code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[def.Code]; !ok {
		r.order = append(r.order, def.Code)
	}
	r.definitions[def.Code] = def
	return nil
}

// RegisterProvider associates a provider implementation with a definition.
func (r *Registry) RegisterProvider(code string, provider Provider) error {
	if code == "" {
		return fmt.Errorf("panel definition code is required to register provider")
	}
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("panel definition %s not found", code)
	}
	r.providers[code] = provider
	return nil
}

// Definition fetches a panel definition by code.
func (r *Registry) Definition(code string) (PanelDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// Provider fetches a panel provider by code.
func (r *Registry) Provider(code string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[code]
	return provider, ok
}

// Definitions returns all registered definitions in registration order.
func (r *Registry) Definitions() []PanelDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]PanelDefinition, 0, len(r.order))
	for _, code := range r.order {
		defs = append(defs, r.definitions[code])
	}
	return defs
}
