package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/nulzo/provider-relay/cmd"
	"github.com/nulzo/provider-relay/internal/cli"
	"github.com/nulzo/provider-relay/internal/config"
	"github.com/nulzo/provider-relay/internal/configstore"
	"github.com/nulzo/provider-relay/internal/health"
	"github.com/nulzo/provider-relay/internal/platform/logger"
	"github.com/nulzo/provider-relay/internal/platform/otel"
	"github.com/nulzo/provider-relay/internal/reconcile"
	"github.com/nulzo/provider-relay/internal/registry"
	"github.com/nulzo/provider-relay/internal/relay"
	"github.com/nulzo/provider-relay/internal/server"
	valid "github.com/nulzo/provider-relay/internal/server/validator"
	"github.com/nulzo/provider-relay/internal/store"
	"github.com/nulzo/provider-relay/internal/store/sqlite"
)

func main() {
	logger.Initialize(logger.DefaultConfig())
	defer logger.Sync()
	log := logger.Get()

	cmd.CheckForUpdates()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	valid.InitValidator()

	// Tracing is best effort; a failed exporter never blocks startup.
	if traceFile, err := os.Create("traces.json"); err == nil {
		shutdown, err := otel.InitTracer("provider-relay", log, traceFile)
		if err != nil {
			log.Warn("tracing disabled", zap.Error(err))
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
	}

	// The audit trail is optional: a broken database disables it but never
	// blocks routing.
	var repo store.Repository
	if r, err := sqlite.NewSQLiteStorage(cfg.Store.DSN); err != nil {
		log.Warn("audit store unavailable, apply events will not be recorded", zap.Error(err))
	} else {
		repo = r
		defer repo.Close()
	}

	// Seed the registry with the providers the host knows out of the box.
	// Plugins register more at runtime.
	reg := registry.New()
	for _, d := range registry.Builtin {
		if err := reg.Register(d); err != nil {
			log.Warn("skipping builtin provider", zap.String("provider", d.Name), zap.Error(err))
		}
	}

	cfgStore := configstore.NewStore(cfg.Relay.StatePath, log)
	engine := reconcile.NewEngine(reg, reconcile.NewState(), log)
	probe := health.NewProbe(nil, time.Duration(cfg.Relay.ProbeTimeoutSeconds)*time.Second, cfg.Relay.MinGatewayVersion, log)
	flow := relay.NewFlow(cfgStore, engine, reg, probe, repo, log)

	// Extension-load hook: read persisted routing and apply it.
	if _, err := flow.OnLoad(context.Background()); err != nil {
		log.Error("initial reconciliation incomplete", zap.Error(err))
	}

	current := cfgStore.Get()
	if current.Enabled() {
		fmt.Printf("%s relay routing %d provider(s) through %s\n",
			cli.CheckMark(), len(current.Providers), cli.Style(current.GatewayURL, cli.Cyan))
	} else {
		fmt.Printf("%s relay routing disabled (no gateway configured)\n", cli.Arrow())
	}

	srv := server.New(cfg, log, flow)
	log.Info("starting relay admin server", zap.String("port", cfg.Server.Port))
	if err := srv.Run(); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
