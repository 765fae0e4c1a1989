package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/provider-relay/internal/reconcile"
	"github.com/nulzo/provider-relay/internal/relay"
	"github.com/nulzo/provider-relay/internal/server/validator"
	"github.com/nulzo/provider-relay/pkg/api"
)

type RoutingHandler struct {
	flow *relay.Flow
}

func NewRoutingHandler(flow *relay.Flow) *RoutingHandler {
	return &RoutingHandler{flow: flow}
}

// Get returns the routing configuration as currently persisted.
//
// GET /relay/v1/routing
func (h *RoutingHandler) Get(c *gin.Context) {
	cfg := h.flow.Current()
	c.JSON(http.StatusOK, api.RoutingView{
		BaseURL:   cfg.GatewayURL,
		Providers: cfg.Providers,
	})
}

// Put saves a routing candidate and reconciles the registry against it.
//
// PUT /relay/v1/routing
func (h *RoutingHandler) Put(c *gin.Context) {
	var req api.RoutingCandidate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(api.ValidationProblem(validator.ParseValidationError(err)))
		return
	}

	cfg, res, err := h.flow.Apply(c.Request.Context(), req.BaseURL, req.Providers)
	if err != nil {
		switch {
		case errors.Is(err, relay.ErrGatewayUnreachable):
			c.Error(api.GatewayProblem(err.Error()))
		default:
			c.Error(api.BadRequestProblem(err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"config": api.RoutingView{BaseURL: cfg.GatewayURL, Providers: cfg.Providers},
		"report": toReport(res),
	})
}

// Reapply re-runs reconciliation against the saved configuration, the same
// pass the host triggers before an agent run starts. Providers registered
// since the last pass get overridden; nothing is saved.
//
// POST /relay/v1/routing/reapply
func (h *RoutingHandler) Reapply(c *gin.Context) {
	res, err := h.flow.BeforeRun(c.Request.Context())
	if err != nil {
		c.Error(api.BadRequestProblem(err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": toReport(res)})
}

func toReport(res reconcile.Result) api.ApplyReport {
	report := api.ApplyReport{
		Routed:  res.Routed,
		Removed: res.Removed,
		Notices: res.Notices,
	}
	if res.SwitchedTo != nil {
		report.SwitchedTo = &api.ModelRef{
			Provider: res.SwitchedTo.Provider,
			ID:       res.SwitchedTo.ID,
		}
	}
	return report
}
