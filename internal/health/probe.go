// Package health implements the single-shot gateway reachability check used
// to gate the settings flow. It is advisory only: the reconciliation engine
// never depends on probe success.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-version"
	"go.uber.org/zap"

	"github.com/nulzo/provider-relay/internal/httpclient"
)

// DefaultTimeout bounds the probe's one GET. There are no retries.
const DefaultTimeout = 5 * time.Second

// versionHeader is the advisory version the gateway reports on /v1/models.
const versionHeader = "X-Relay-Version"

// Status is the probe outcome. It is never an error value: an unreachable
// gateway yields OK=false with a human-readable message.
type Status struct {
	OK      bool
	Error   string
	Warning string
}

type Probe struct {
	client  httpclient.HTTPClient
	timeout time.Duration
	minVer  *version.Version
	logger  *zap.Logger
}

// NewProbe builds a probe. minGatewayVersion may be empty; an unparseable
// value is ignored with a warning rather than failing construction.
func NewProbe(client httpclient.HTTPClient, timeout time.Duration, minGatewayVersion string, logger *zap.Logger) *Probe {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	p := &Probe{client: client, timeout: timeout, logger: logger}

	if minGatewayVersion != "" {
		v, err := version.NewVersion(minGatewayVersion)
		if err != nil {
			logger.Warn("ignoring unparseable min gateway version",
				zap.String("value", minGatewayVersion),
				zap.Error(err))
		} else {
			p.minVer = v
		}
	}

	return p
}

// Check issues one GET to baseURL + "/v1/models". Any non-2xx status or
// transport error yields OK=false. When the gateway advertises its version
// and it is older than the configured minimum, the status carries a warning
// but stays OK.
func (p *Probe) Check(ctx context.Context, baseURL string) Status {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	url := baseURL + "/v1/models"
	hdr, err := httpclient.SendRequest(ctx, p.client, http.MethodGet, url, nil, nil, nil)
	if err != nil {
		var upstream *httpclient.UpstreamError
		if errors.As(err, &upstream) {
			return Status{Error: fmt.Sprintf("gateway responded with status %d at %s", upstream.StatusCode, url)}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return Status{Error: fmt.Sprintf("gateway did not respond within %s at %s", p.timeout, url)}
		}
		return Status{Error: fmt.Sprintf("gateway unreachable at %s: %v", url, err)}
	}

	st := Status{OK: true}

	if p.minVer != nil {
		if raw := hdr.Get(versionHeader); raw != "" {
			got, err := version.NewVersion(raw)
			if err == nil && got.LessThan(p.minVer) {
				st.Warning = fmt.Sprintf("gateway version %s is older than the supported minimum %s", got, p.minVer)
			}
		}
	}

	return st
}
