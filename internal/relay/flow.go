// Package relay orchestrates the routing shim: it owns the settings flow
// (validate, probe, save, reconcile) and the host lifecycle hooks that
// re-apply routing. The interactive surface in front of it is a thin
// wrapper; everything with semantics lives here.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nulzo/provider-relay/internal/configstore"
	"github.com/nulzo/provider-relay/internal/health"
	"github.com/nulzo/provider-relay/internal/reconcile"
	"github.com/nulzo/provider-relay/internal/registry"
	"github.com/nulzo/provider-relay/internal/store"
	"github.com/nulzo/provider-relay/internal/store/model"
	"github.com/nulzo/provider-relay/pkg/api"
)

// ErrGatewayUnreachable gates the settings flow: a candidate whose gateway
// fails the probe is rejected before anything is saved. There is no
// force-save path; the user re-enters the URL or cancels.
var ErrGatewayUnreachable = errors.New("gateway unreachable")

// Candidate is a normalized, validated configuration ready to apply.
type Candidate struct {
	GatewayURL string
	Providers  []string
	// Warning carries a non-fatal probe condition, surfaced to the user.
	Warning string
}

type Flow struct {
	cfg    *configstore.Store
	engine *reconcile.Engine
	reg    *registry.Registry
	probe  *health.Probe
	repo   store.Repository // nil disables the audit trail
	logger *zap.Logger
}

func NewFlow(cfg *configstore.Store, engine *reconcile.Engine, reg *registry.Registry, probe *health.Probe, repo store.Repository, logger *zap.Logger) *Flow {
	return &Flow{
		cfg:    cfg,
		engine: engine,
		reg:    reg,
		probe:  probe,
		repo:   repo,
		logger: logger,
	}
}

// Current returns the resolved configuration as persisted.
func (f *Flow) Current() configstore.ResolvedConfig {
	return f.cfg.Get()
}

// KnownProviders lists every provider name the registry currently holds,
// flagged with whether it is routed by the saved configuration. Providers
// registered dynamically by other plugins are included.
func (f *Flow) KnownProviders() []api.ProviderInfo {
	current := f.cfg.Get()
	routed := make(map[string]struct{}, len(current.Providers))
	for _, n := range current.Providers {
		routed[n] = struct{}{}
	}

	var out []api.ProviderInfo
	for _, name := range f.reg.ProviderNames() {
		desc, _ := f.reg.Provider(name)
		_, isRouted := routed[name]
		out = append(out, api.ProviderInfo{
			Name:   name,
			Routed: isRouted,
			Models: len(desc.Models),
		})
	}
	return out
}

// Preview normalizes and validates a candidate without side effects.
func (f *Flow) Preview(rawURL string, providers []string) (Candidate, error) {
	for _, name := range providers {
		if err := registry.ValidateName(name); err != nil {
			return Candidate{}, err
		}
	}

	return Candidate{
		GatewayURL: configstore.NormalizeGatewayURL(rawURL),
		Providers:  providers,
	}, nil
}

// ProbeURL runs the advisory reachability check against a raw URL.
func (f *Flow) ProbeURL(ctx context.Context, rawURL string) (string, health.Status) {
	url := configstore.NormalizeGatewayURL(rawURL)
	if url == "" {
		return "", health.Status{Error: "no gateway URL entered"}
	}
	return url, f.probe.Check(ctx, url)
}

// Apply runs the full settings flow for a candidate: probe the gateway (when
// routing is being enabled), persist the configuration, then reconcile the
// registry. A failed probe rejects the candidate before anything is saved,
// so cancellation or failure up to that point leaves both the config store
// and the registry exactly as they were.
func (f *Flow) Apply(ctx context.Context, rawURL string, providers []string) (configstore.ResolvedConfig, reconcile.Result, error) {
	cand, err := f.Preview(rawURL, providers)
	if err != nil {
		return f.cfg.Get(), reconcile.Result{}, err
	}

	if cand.GatewayURL != "" && len(cand.Providers) > 0 {
		st := f.probe.Check(ctx, cand.GatewayURL)
		if !st.OK {
			return f.cfg.Get(), reconcile.Result{}, fmt.Errorf("%w: %s", ErrGatewayUnreachable, st.Error)
		}
		cand.Warning = st.Warning
	}

	cfg, err := f.cfg.Save(configstore.Update{
		GatewayURL: &cand.GatewayURL,
		Providers:  &cand.Providers,
	})
	if err != nil {
		return cfg, reconcile.Result{}, err
	}

	res, err := f.reconcileNow(ctx, cfg, HookSettings)
	if cand.Warning != "" {
		res.Notices = append(res.Notices, cand.Warning)
	}
	return cfg, res, err
}

// reconcileNow applies the given configuration, makes a reported switch
// live, and records the pass in the audit trail.
func (f *Flow) reconcileNow(ctx context.Context, cfg configstore.ResolvedConfig, hook string) (reconcile.Result, error) {
	res, err := f.engine.ApplyRouting(ctx, cfg, f.activeSnapshot())
	if err != nil {
		return res, err
	}

	if res.SwitchedTo != nil {
		f.reg.SetActiveModel(registry.ModelRef{
			Provider: res.SwitchedTo.Provider,
			ID:       res.SwitchedTo.ID,
		})
		f.logger.Info("active model re-resolved against gateway",
			zap.String("provider", res.SwitchedTo.Provider),
			zap.String("model", res.SwitchedTo.ID))
	}

	if len(res.Routed) > 0 || len(res.Removed) > 0 {
		f.recordApply(ctx, cfg, res, hook)
	}

	return res, nil
}

// activeSnapshot captures the host's active model as a value copy, including
// its current (pre-reconciliation) connection fields. The engine compares
// this snapshot against the post-write registry to detect staleness.
func (f *Flow) activeSnapshot() *registry.ModelDescriptor {
	ref := f.reg.ActiveModel()
	if ref == nil {
		return nil
	}
	if m, ok := f.reg.LookupModel(ref.Provider, ref.ID); ok {
		return &m
	}
	return &registry.ModelDescriptor{Provider: ref.Provider, ID: ref.ID}
}

// recordApply appends one row to the audit trail. Routing never fails
// because of the audit log: errors are logged and swallowed.
func (f *Flow) recordApply(ctx context.Context, cfg configstore.ResolvedConfig, res reconcile.Result, hook string) {
	if f.repo == nil {
		return
	}

	rec := &model.ApplyRecord{
		ID:         uuid.NewString(),
		GatewayURL: cfg.GatewayURL,
		Hook:       hook,
		CreatedAt:  time.Now().UTC(),
	}
	rec.SetLists(res.Routed, res.Removed, res.Notices)

	if err := f.repo.Applies().Log(ctx, rec); err != nil {
		f.logger.Warn("failed to record apply event", zap.Error(err))
	}
}

// RecentApplies returns the last N audit rows for the admin surface.
func (f *Flow) RecentApplies(ctx context.Context, limit int) ([]api.AuditEntry, error) {
	if f.repo == nil {
		return nil, nil
	}

	recs, err := f.repo.Applies().Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]api.AuditEntry, 0, len(recs))
	for _, r := range recs {
		out = append(out, api.AuditEntry{
			ID:         r.ID,
			GatewayURL: r.GatewayURL,
			Routed:     r.Routed(),
			Removed:    r.Removed(),
			Notices:    r.Notices(),
			Trigger:    r.Hook,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}
