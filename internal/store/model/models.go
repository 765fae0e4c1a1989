package model

import (
	"encoding/json"
	"time"
)

// ApplyRecord is one reconciliation pass as stored in sqlite. Provider name
// lists and notices are stored as JSON blobs; counts are denormalized for
// cheap aggregation.
type ApplyRecord struct {
	ID           string    `db:"id"`
	GatewayURL   string    `db:"gateway_url"`
	Hook         string    `db:"hook"`
	RoutedJSON   string    `db:"routed_json"`
	RemovedJSON  string    `db:"removed_json"`
	NoticesJSON  string    `db:"notices_json"`
	RoutedCount  int       `db:"routed_count"`
	RemovedCount int       `db:"removed_count"`
	CreatedAt    time.Time `db:"created_at"`
}

// SetLists encodes the provider lists and notices into their JSON columns.
func (r *ApplyRecord) SetLists(routed, removed, notices []string) {
	r.RoutedJSON = mustJSON(routed)
	r.RemovedJSON = mustJSON(removed)
	r.NoticesJSON = mustJSON(notices)
	r.RoutedCount = len(routed)
	r.RemovedCount = len(removed)
}

// Routed decodes the routed provider list.
func (r *ApplyRecord) Routed() []string { return fromJSON(r.RoutedJSON) }

// Removed decodes the removed provider list.
func (r *ApplyRecord) Removed() []string { return fromJSON(r.RemovedJSON) }

// Notices decodes the notice list.
func (r *ApplyRecord) Notices() []string { return fromJSON(r.NoticesJSON) }

func mustJSON(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func fromJSON(s string) []string {
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}
