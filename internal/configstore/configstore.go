// Package configstore persists the routing shim's resolved configuration: a
// single gateway URL plus the ordered set of provider names routed through
// it. One global scope, one JSON file. A missing or corrupt file is never
// fatal; it resolves to the defaults (routing disabled).
package configstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// ResolvedConfig is the merged view of persisted state over defaults.
// GatewayURL is either empty (routing disabled) or a normalized absolute URL
// with no trailing slash and no /v1 suffix. Providers carries no duplicates;
// order is preserved for display only.
type ResolvedConfig struct {
	GatewayURL string   `json:"baseUrl"`
	Providers  []string `json:"providers"`
}

// Clone returns a deep copy so callers can hold the value across saves.
func (c ResolvedConfig) Clone() ResolvedConfig {
	out := ResolvedConfig{GatewayURL: c.GatewayURL}
	if c.Providers != nil {
		out.Providers = append([]string(nil), c.Providers...)
	}
	return out
}

// Enabled reports whether the configuration names both a gateway and at
// least one provider to route through it.
func (c ResolvedConfig) Enabled() bool {
	return c.GatewayURL != "" && len(c.Providers) > 0
}

// Update is a partial configuration for Save. Nil fields are left unchanged;
// non-nil fields replace the persisted value wholesale.
type Update struct {
	GatewayURL *string
	Providers  *[]string
}

// Defaults returns the hard-coded baseline: no gateway, no providers.
func Defaults() ResolvedConfig {
	return ResolvedConfig{GatewayURL: "", Providers: []string{}}
}

// Resolve merges a persisted partial configuration over the given defaults.
// Pure: no I/O, no mutation of its arguments. Provider names are
// deduplicated preserving first occurrence.
func Resolve(persisted Update, defaults ResolvedConfig) ResolvedConfig {
	out := defaults.Clone()
	if persisted.GatewayURL != nil {
		out.GatewayURL = *persisted.GatewayURL
	}
	if persisted.Providers != nil {
		out.Providers = dedupe(*persisted.Providers)
	}
	return out
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Store is the durable configuration store. Get and Save are safe to call
// concurrently from the same process; Get never observes a partially
// applied save.
type Store struct {
	path   string
	logger *zap.Logger

	mu       sync.RWMutex
	resolved ResolvedConfig
}

func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{
		path:     path,
		logger:   logger,
		resolved: Defaults(),
	}
}

// Load reads the persisted file merged over defaults. Fails soft: a missing
// or unreadable file logs a warning and leaves the defaults in place. Never
// fatal to host startup.
func (s *Store) Load() ResolvedConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("routing config unreadable, using defaults",
				zap.String("path", s.path),
				zap.Error(err))
		}
		s.resolved = Defaults()
		return s.resolved.Clone()
	}

	var persisted ResolvedConfig
	if err := json.Unmarshal(data, &persisted); err != nil {
		s.logger.Warn("routing config corrupt, using defaults",
			zap.String("path", s.path),
			zap.Error(err))
		s.resolved = Defaults()
		return s.resolved.Clone()
	}

	s.resolved = Resolve(Update{
		GatewayURL: &persisted.GatewayURL,
		Providers:  &persisted.Providers,
	}, Defaults())

	return s.resolved.Clone()
}

// Get returns the current resolved configuration. Synchronous, no I/O.
func (s *Store) Get() ResolvedConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved.Clone()
}

// Save merges the given fields into the persisted configuration, writes it
// durably, and updates the in-memory view before returning. The old
// configuration stays fully visible until the new one is committed.
func (s *Store) Save(update Update) (ResolvedConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Resolve(update, s.resolved)

	if err := s.writeFile(next); err != nil {
		return s.resolved.Clone(), fmt.Errorf("persist routing config: %w", err)
	}

	s.resolved = next
	return s.resolved.Clone(), nil
}

// writeFile persists atomically: write a sibling temp file, fsync, rename.
func (s *Store) writeFile(cfg ResolvedConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, s.path)
}
