package configstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routing.json")
	return NewStore(path, zap.NewNop()), path
}

func TestResolve_MergesOverDefaults(t *testing.T) {
	url := "http://gw.test"
	providers := []string{"openai", "anthropic"}

	resolved := Resolve(Update{GatewayURL: &url, Providers: &providers}, Defaults())
	assert.Equal(t, "http://gw.test", resolved.GatewayURL)
	assert.Equal(t, []string{"openai", "anthropic"}, resolved.Providers)

	// nil fields leave defaults in place
	resolved = Resolve(Update{}, Defaults())
	assert.Equal(t, "", resolved.GatewayURL)
	assert.Empty(t, resolved.Providers)
}

func TestResolve_DeduplicatesProviders(t *testing.T) {
	providers := []string{"openai", "anthropic", "openai", "anthropic"}
	resolved := Resolve(Update{Providers: &providers}, Defaults())
	assert.Equal(t, []string{"openai", "anthropic"}, resolved.Providers)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	store, _ := newTestStore(t)

	cfg := store.Load()
	assert.Equal(t, "", cfg.GatewayURL)
	assert.Empty(t, cfg.Providers)
	assert.False(t, cfg.Enabled())
}

func TestLoad_CorruptFileFallsBackToDefaults(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cfg := store.Load()
	assert.Equal(t, "", cfg.GatewayURL)
	assert.Empty(t, cfg.Providers)
}

func TestSave_PersistsAndUpdatesView(t *testing.T) {
	store, path := newTestStore(t)
	store.Load()

	url := "http://gw.test"
	providers := []string{"openai"}
	saved, err := store.Save(Update{GatewayURL: &url, Providers: &providers})
	require.NoError(t, err)
	assert.Equal(t, "http://gw.test", saved.GatewayURL)

	// in-memory view updated
	assert.Equal(t, saved, store.Get())

	// file persisted with the documented field names
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, "http://gw.test", onDisk["baseUrl"])

	// a fresh store reads it back
	reread := NewStore(path, zap.NewNop())
	cfg := reread.Load()
	assert.Equal(t, "http://gw.test", cfg.GatewayURL)
	assert.Equal(t, []string{"openai"}, cfg.Providers)
}

func TestSave_PartialMergeKeepsOtherFields(t *testing.T) {
	store, _ := newTestStore(t)
	store.Load()

	url := "http://gw.test"
	providers := []string{"openai", "google"}
	_, err := store.Save(Update{GatewayURL: &url, Providers: &providers})
	require.NoError(t, err)

	// update only the provider set
	next := []string{"google"}
	saved, err := store.Save(Update{Providers: &next})
	require.NoError(t, err)
	assert.Equal(t, "http://gw.test", saved.GatewayURL)
	assert.Equal(t, []string{"google"}, saved.Providers)
}

func TestGet_ReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t)
	url := "http://gw.test"
	providers := []string{"openai"}
	_, err := store.Save(Update{GatewayURL: &url, Providers: &providers})
	require.NoError(t, err)

	cfg := store.Get()
	cfg.Providers[0] = "mutated"
	assert.Equal(t, []string{"openai"}, store.Get().Providers)
}
