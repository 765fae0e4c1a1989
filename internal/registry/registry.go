// Package registry holds the host's live provider/model registry. The
// routing shim does not own this state: other plugins register providers and
// models here at arbitrary points in the host lifecycle, so every write by
// the shim is scoped to a single provider name and preceded by a read of the
// current entry.
package registry

import (
	"fmt"
	"regexp"
	"sync"
)

// ModelDescriptor describes one model under a provider. Connection fields
// are stamped from the owning provider descriptor at lookup time, so a
// lookup after a provider overwrite reflects the new endpoint.
type ModelDescriptor struct {
	Provider string `json:"provider"`
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"-"`
	API      string `json:"api,omitempty"`
}

// ProviderDescriptor is a provider's connection entry. API and Models are
// optional; when absent the host's own defaulting applies.
type ProviderDescriptor struct {
	Name    string
	BaseURL string
	APIKey  string
	API     string
	Models  []ModelDescriptor
}

func (d ProviderDescriptor) clone() ProviderDescriptor {
	out := d
	if d.Models != nil {
		out.Models = append([]ModelDescriptor(nil), d.Models...)
	}
	return out
}

// ModelRef identifies a model by (provider, id) without connection state.
type ModelRef struct {
	Provider string
	ID       string
}

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateName rejects provider names the registry cannot index.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("invalid provider name %q", name)
	}
	return nil
}

// Registry is a thread-safe provider registry. Insertion order of providers
// is preserved so enumeration is deterministic.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ProviderDescriptor
	order     []string
	active    *ModelRef
}

func New() *Registry {
	return &Registry{
		providers: make(map[string]ProviderDescriptor),
	}
}

// Register adds or overwrites a provider descriptor wholesale. The caller is
// responsible for carrying forward any model metadata it wants to survive
// the overwrite.
func (r *Registry) Register(desc ProviderDescriptor) error {
	if err := ValidateName(desc.Name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[desc.Name]; !exists {
		r.order = append(r.order, desc.Name)
	}
	r.providers[desc.Name] = desc.clone()
	return nil
}

// Provider returns the current descriptor for a name, if registered.
func (r *Registry) Provider(name string) (ProviderDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.providers[name]
	if !ok {
		return ProviderDescriptor{}, false
	}
	return d.clone(), true
}

// Remove deletes a provider entry. Removing an unknown name is a no-op.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return false
	}
	delete(r.providers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// ProviderNames returns all registered provider names in insertion order.
func (r *Registry) ProviderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// ListModels enumerates every registered model across all providers, each
// stamped with its provider's current connection fields.
func (r *Registry) ListModels() []ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ModelDescriptor
	for _, name := range r.order {
		d := r.providers[name]
		for _, m := range d.Models {
			out = append(out, stamp(d, m))
		}
	}
	return out
}

// LookupModel resolves (provider, id) against the registry's current state.
func (r *Registry) LookupModel(provider, id string) (ModelDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.providers[provider]
	if !ok {
		return ModelDescriptor{}, false
	}
	for _, m := range d.Models {
		if m.ID == id {
			return stamp(d, m), true
		}
	}
	return ModelDescriptor{}, false
}

// ActiveModel returns the host's current active model reference, if any.
func (r *Registry) ActiveModel() *ModelRef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == nil {
		return nil
	}
	ref := *r.active
	return &ref
}

// SetActiveModel records the host's active model.
func (r *Registry) SetActiveModel(ref ModelRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = &ref
}

func stamp(d ProviderDescriptor, m ModelDescriptor) ModelDescriptor {
	m.Provider = d.Name
	m.BaseURL = d.BaseURL
	m.APIKey = d.APIKey
	if m.API == "" {
		m.API = d.API
	}
	return m
}
