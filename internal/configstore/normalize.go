package configstore

import "strings"

// NormalizeGatewayURL canonicalizes user-entered gateway URLs. The rules are
// shared verbatim between the settings surface and the reconciliation
// engine: trim whitespace; empty means "no value entered"; prepend http://
// when no scheme is present; strip a trailing /v1 or /v1/; strip trailing
// slashes. The engine appends the /v1 suffix itself when routing.
func NormalizeGatewayURL(raw string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return ""
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	if strings.HasSuffix(url, "/v1/") {
		url = strings.TrimSuffix(url, "/v1/")
	} else if strings.HasSuffix(url, "/v1") {
		url = strings.TrimSuffix(url, "/v1")
	}

	return strings.TrimRight(url, "/")
}
