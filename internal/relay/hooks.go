package relay

import (
	"context"

	"go.uber.org/zap"

	"github.com/nulzo/provider-relay/internal/reconcile"
)

// Hook names recorded in the audit trail.
const (
	HookLoad      = "load"
	HookBeforeRun = "before-run"
	HookSettings  = "settings"
)

// OnLoad runs at extension load: read the persisted configuration, seed the
// last-applied memory from it, and apply initial routing. Config load fails
// soft, so this never blocks host startup.
func (f *Flow) OnLoad(ctx context.Context) (reconcile.Result, error) {
	cfg := f.cfg.Load()
	f.engine.State().Seed(cfg.Providers)

	res, err := f.reconcileNow(ctx, cfg, HookLoad)
	if err != nil {
		f.logger.Error("initial routing failed", zap.Error(err))
		return res, err
	}

	if cfg.Enabled() {
		f.logger.Info("gateway routing applied at load",
			zap.String("gateway", cfg.GatewayURL),
			zap.Int("providers", len(cfg.Providers)))
	}
	return res, nil
}

// BeforeRun re-applies routing just before an agent run starts. Providers
// registered by other plugins after load are read and overridden here, which
// is why the overwrite is deferred to this hook rather than done eagerly and
// unconditionally at load time.
func (f *Flow) BeforeRun(ctx context.Context) (reconcile.Result, error) {
	return f.reconcileNow(ctx, f.cfg.Get(), HookBeforeRun)
}
