package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nulzo/provider-relay/internal/configstore"
	"github.com/nulzo/provider-relay/internal/health"
	"github.com/nulzo/provider-relay/internal/reconcile"
	"github.com/nulzo/provider-relay/internal/registry"
)

type fixture struct {
	flow      *Flow
	reg       *registry.Registry
	cfg       *configstore.Store
	gw        *httptest.Server
	statePath string
}

// newFixture wires a flow against a stub gateway that answers /v1/models.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	t.Cleanup(gw.Close)

	log := zap.NewNop()
	reg := registry.New()
	statePath := filepath.Join(t.TempDir(), "routing.json")
	cfg := configstore.NewStore(statePath, log)
	cfg.Load()
	engine := reconcile.NewEngine(reg, reconcile.NewState(), log)
	probe := health.NewProbe(gw.Client(), 0, "", log)

	return &fixture{
		flow:      NewFlow(cfg, engine, reg, probe, nil, log),
		reg:       reg,
		cfg:       cfg,
		gw:        gw,
		statePath: statePath,
	}
}

func TestApply_RoutesAndPersists(t *testing.T) {
	fx := newFixture(t)

	cfg, res, err := fx.flow.Apply(context.Background(), fx.gw.URL+"/v1/", []string{"openai"})
	require.NoError(t, err)

	assert.Equal(t, fx.gw.URL, cfg.GatewayURL, "raw URL normalized before saving")
	assert.Equal(t, []string{"openai"}, cfg.Providers)
	assert.Equal(t, []string{"openai"}, res.Routed)

	d, ok := fx.reg.Provider("openai")
	require.True(t, ok)
	assert.Equal(t, fx.gw.URL+"/v1", d.BaseURL)
	assert.Equal(t, reconcile.KeySentinel, d.APIKey)

	// persisted, not just in memory
	assert.Equal(t, fx.gw.URL, fx.cfg.Get().GatewayURL)
}

func TestApply_UnreachableGatewayRejectedBeforeSave(t *testing.T) {
	fx := newFixture(t)
	deadURL := fx.gw.URL
	fx.gw.Close()

	_, _, err := fx.flow.Apply(context.Background(), deadURL, []string{"openai"})
	require.ErrorIs(t, err, ErrGatewayUnreachable)

	assert.Empty(t, fx.cfg.Get().GatewayURL, "nothing saved on a failed probe")
	_, ok := fx.reg.Provider("openai")
	assert.False(t, ok, "nothing reconciled on a failed probe")
}

func TestApply_InvalidProviderNameRejected(t *testing.T) {
	fx := newFixture(t)

	_, _, err := fx.flow.Apply(context.Background(), fx.gw.URL, []string{"has space"})
	require.Error(t, err)
	assert.Empty(t, fx.cfg.Get().GatewayURL)
}

func TestApply_DeselectAllUnroutes(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, _, err := fx.flow.Apply(ctx, fx.gw.URL, []string{"openai"})
	require.NoError(t, err)

	// deselecting every provider skips the probe gate entirely
	fx.gw.Close()

	_, res, err := fx.flow.Apply(ctx, fx.gw.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"openai"}, res.Removed)
	require.Len(t, res.Notices, 1)
	assert.Contains(t, res.Notices[0], `"openai"`)

	_, ok := fx.reg.Provider("openai")
	assert.False(t, ok)
}

func TestApply_DisableClearsURLWithoutProbing(t *testing.T) {
	fx := newFixture(t)
	fx.gw.Close()

	cfg, res, err := fx.flow.Apply(context.Background(), "   ", nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.GatewayURL)
	assert.Empty(t, res.Routed)
	assert.Empty(t, res.Removed)
}

func TestApply_MakesSwitchedModelLive(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.reg.Register(registry.ProviderDescriptor{
		Name:    "anthropic",
		BaseURL: "https://api.anthropic.com/v1",
		APIKey:  "sk-real",
		Models:  []registry.ModelDescriptor{{ID: "claude-sonnet-4-5"}},
	}))
	fx.reg.SetActiveModel(registry.ModelRef{Provider: "anthropic", ID: "claude-sonnet-4-5"})

	_, res, err := fx.flow.Apply(context.Background(), fx.gw.URL, []string{"anthropic"})
	require.NoError(t, err)

	require.NotNil(t, res.SwitchedTo)
	assert.Equal(t, fx.gw.URL+"/v1", res.SwitchedTo.BaseURL)

	ref := fx.reg.ActiveModel()
	require.NotNil(t, ref)
	assert.Equal(t, "anthropic", ref.Provider)
	assert.Equal(t, "claude-sonnet-4-5", ref.ID)
}

func TestOnLoad_SeedsStateAndApplies(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, _, err := fx.flow.Apply(ctx, fx.gw.URL, []string{"openai", "google"})
	require.NoError(t, err)

	// fresh process over the same state file
	log := zap.NewNop()
	reg2 := registry.New()
	cfg2 := configstore.NewStore(fx.statePath, log)
	engine2 := reconcile.NewEngine(reg2, reconcile.NewState(), log)
	probe2 := health.NewProbe(fx.gw.Client(), 0, "", log)
	flow2 := NewFlow(cfg2, engine2, reg2, probe2, nil, log)

	res, err := flow2.OnLoad(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"openai", "google"}, res.Routed)

	// a deselect in the restarted process converges against the seeded set
	_, res, err = flow2.Apply(ctx, fx.gw.URL, []string{"google"})
	require.NoError(t, err)
	assert.Equal(t, []string{"openai"}, res.Removed)
}

func TestBeforeRun_OverridesLateRegistrations(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, _, err := fx.flow.Apply(ctx, fx.gw.URL, []string{"mistral"})
	require.NoError(t, err)

	// another plugin registers mistral with its own endpoint after apply
	require.NoError(t, fx.reg.Register(registry.ProviderDescriptor{
		Name:    "mistral",
		BaseURL: "https://api.mistral.ai/v1",
		APIKey:  "sk-native",
		Models:  []registry.ModelDescriptor{{ID: "mistral-large"}},
	}))

	_, err = fx.flow.BeforeRun(ctx)
	require.NoError(t, err)

	d, ok := fx.reg.Provider("mistral")
	require.True(t, ok)
	assert.Equal(t, fx.gw.URL+"/v1", d.BaseURL)
	assert.Equal(t, reconcile.KeySentinel, d.APIKey)
	require.Len(t, d.Models, 1, "late-registered models survive the override")
	assert.Equal(t, "mistral-large", d.Models[0].ID)
}

func TestPreview_NormalizesWithoutSideEffects(t *testing.T) {
	fx := newFixture(t)

	cand, err := fx.flow.Preview("ai.example.ts.net/v1/", []string{"openai"})
	require.NoError(t, err)
	assert.Equal(t, "http://ai.example.ts.net", cand.GatewayURL)
	assert.Empty(t, fx.cfg.Get().GatewayURL)
}

func TestProbeURL_EmptyInput(t *testing.T) {
	fx := newFixture(t)

	url, st := fx.flow.ProbeURL(context.Background(), "  ")
	assert.Empty(t, url)
	assert.False(t, st.OK)
	assert.Contains(t, st.Error, "no gateway URL")
}

func TestKnownProviders_FlagsRouted(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.reg.Register(registry.ProviderDescriptor{
		Name:   "ollama",
		Models: []registry.ModelDescriptor{{ID: "llama3"}, {ID: "qwen3"}},
	}))

	_, _, err := fx.flow.Apply(context.Background(), fx.gw.URL, []string{"openai"})
	require.NoError(t, err)

	infos := fx.flow.KnownProviders()
	byName := map[string]bool{}
	models := map[string]int{}
	for _, p := range infos {
		byName[p.Name] = p.Routed
		models[p.Name] = p.Models
	}
	assert.True(t, byName["openai"])
	assert.False(t, byName["ollama"])
	assert.Equal(t, 2, models["ollama"])
}

func TestRecentApplies_NilRepo(t *testing.T) {
	fx := newFixture(t)

	entries, err := fx.flow.RecentApplies(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, entries)
}
