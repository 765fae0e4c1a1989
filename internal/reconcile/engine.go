// Package reconcile converges the host's live provider registry to the
// currently desired routed set. It computes the minimal set of
// registrations, preservations, and removals: overwrites are read-before-
// write so model metadata contributed by other plugins survives, removals
// are derived from the shim's own last-applied memory, and the active model
// is re-resolved after writes so it never points at a stale endpoint.
package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nulzo/provider-relay/internal/configstore"
	"github.com/nulzo/provider-relay/internal/registry"
)

// KeySentinel is written as the apiKey of every gateway-routed provider. The
// gateway injects real credentials server-side; this value is never a usable
// secret and must not be logged.
const KeySentinel = "relay-managed"

// Result reports one reconciliation pass.
type Result struct {
	// Routed lists the providers now pointed at the gateway, in order.
	Routed []string
	// Removed lists providers un-routed by this pass.
	Removed []string
	// SwitchedTo, when non-nil, is the post-override descriptor the caller
	// should make live in place of its stale active-model snapshot.
	SwitchedTo *registry.ModelDescriptor
	// Notices are user-facing follow-ups, one per removed provider.
	Notices []string
}

// ProviderRegistry is the slice of the host registry the engine touches.
// Satisfied by *registry.Registry.
type ProviderRegistry interface {
	Provider(name string) (registry.ProviderDescriptor, bool)
	Register(desc registry.ProviderDescriptor) error
	Remove(name string) bool
	LookupModel(provider, id string) (registry.ModelDescriptor, bool)
}

// Engine applies routing against a live registry. No method performs
// network I/O; the only failure mode is the registry rejecting a malformed
// provider name.
type Engine struct {
	reg    ProviderRegistry
	state  *State
	logger *zap.Logger
}

func NewEngine(reg ProviderRegistry, state *State, logger *zap.Logger) *Engine {
	return &Engine{reg: reg, state: state, logger: logger}
}

// State exposes the engine's last-applied memory, for seeding at startup.
func (e *Engine) State() *State {
	return e.state
}

// ApplyRouting converges the registry to the desired configuration.
//
// An empty gateway URL is a silent no-op: an unconfigured gateway must
// never shadow real provider endpoints, so zero registry calls are made.
// An empty provider set with a URL still converges: nothing is registered,
// but providers routed on a previous pass are removed. A malformed
// provider name aborts the remaining batch; writes applied before the
// failure point stand, and the last-applied memory is left untouched so
// the next pass reconciles them.
func (e *Engine) ApplyRouting(ctx context.Context, desired configstore.ResolvedConfig, active *registry.ModelDescriptor) (Result, error) {
	var res Result

	if desired.GatewayURL == "" {
		return res, nil
	}

	targetURL := desired.GatewayURL + "/v1"

	for _, name := range desired.Providers {
		// Read the current entry first: models and the api tag registered
		// earlier by unrelated plugins must survive the overwrite.
		prev, existed := e.reg.Provider(name)

		desc := registry.ProviderDescriptor{
			Name:    name,
			BaseURL: targetURL,
			APIKey:  KeySentinel,
		}
		if existed {
			desc.API = prev.API
			desc.Models = prev.Models
		}

		if err := e.reg.Register(desc); err != nil {
			e.logger.Error("provider registration rejected, aborting batch",
				zap.String("provider", name),
				zap.Strings("applied", res.Routed))
			return res, fmt.Errorf("route provider %q: %w", name, err)
		}

		res.Routed = append(res.Routed, name)
		e.logger.Debug("provider routed through gateway",
			zap.String("provider", name),
			zap.String("base_url", targetURL))
	}

	for _, name := range e.state.removals(desired.Providers) {
		// Removing a provider the shim never registered is a no-op.
		e.reg.Remove(name)
		res.Removed = append(res.Removed, name)
		res.Notices = append(res.Notices, fmt.Sprintf(
			"Provider %q will use its original configuration after the next full reload.", name))
	}

	e.state.replace(desired.Providers)

	// The caller's active model is a value snapshot taken earlier in the
	// host lifecycle. If its provider was just rewritten, re-resolve it
	// against the post-write registry so the caller can make it live.
	if active != nil && contains(desired.Providers, active.Provider) {
		if current, ok := e.reg.LookupModel(active.Provider, active.ID); ok {
			if current.BaseURL != active.BaseURL || current.APIKey != active.APIKey {
				res.SwitchedTo = &current
			}
		}
	}

	if len(res.Removed) > 0 {
		e.logger.Info("providers un-routed",
			zap.Strings("removed", res.Removed))
	}

	return res, nil
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
