package api

import "time"

// RoutingCandidate is the payload accepted by PUT /relay/v1/routing: the
// desired gateway URL and the provider names to route through it. The URL is
// normalized server-side; an empty URL with an empty provider list disables
// routing entirely.
type RoutingCandidate struct {
	BaseURL   string   `json:"base_url"`
	Providers []string `json:"providers" binding:"omitempty,dive,min=1"`
}

// RoutingView is the resolved routing configuration as currently persisted.
type RoutingView struct {
	BaseURL   string   `json:"base_url"`
	Providers []string `json:"providers"`
}

// ApplyReport describes the outcome of one reconciliation pass.
type ApplyReport struct {
	Routed     []string  `json:"routed"`
	Removed    []string  `json:"removed"`
	SwitchedTo *ModelRef `json:"switched_to,omitempty"`
	Notices    []string  `json:"notices,omitempty"`
}

// ModelRef identifies a model by provider and id.
type ModelRef struct {
	Provider string `json:"provider"`
	ID       string `json:"id"`
}

// ProviderInfo is one row of GET /relay/v1/providers.
type ProviderInfo struct {
	Name   string `json:"name"`
	Routed bool   `json:"routed"`
	Models int    `json:"models"`
}

// ProbeRequest is the payload for POST /relay/v1/probe.
type ProbeRequest struct {
	BaseURL string `json:"base_url" binding:"required"`
}

// ProbeResult reports gateway reachability. Warning carries a non-fatal
// condition such as an outdated gateway version.
type ProbeResult struct {
	OK      bool   `json:"ok"`
	URL     string `json:"url"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// AuditEntry is one row of GET /relay/v1/audit.
type AuditEntry struct {
	ID         string    `json:"id"`
	GatewayURL string    `json:"gateway_url"`
	Routed     []string  `json:"routed"`
	Removed    []string  `json:"removed"`
	Notices    []string  `json:"notices,omitempty"`
	Trigger    string    `json:"trigger"`
	CreatedAt  time.Time `json:"created_at"`
}
