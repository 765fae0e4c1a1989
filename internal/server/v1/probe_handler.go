package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/provider-relay/internal/relay"
	"github.com/nulzo/provider-relay/internal/server/validator"
	"github.com/nulzo/provider-relay/pkg/api"
)

type ProbeHandler struct {
	flow *relay.Flow
}

func NewProbeHandler(flow *relay.Flow) *ProbeHandler {
	return &ProbeHandler{flow: flow}
}

// Probe checks reachability of a candidate gateway URL. Advisory: a failed
// probe is reported in the body with a 200, not an error status, because
// the check itself succeeded.
//
// POST /relay/v1/probe
func (h *ProbeHandler) Probe(c *gin.Context) {
	var req api.ProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(api.ValidationProblem(validator.ParseValidationError(err)))
		return
	}

	url, status := h.flow.ProbeURL(c.Request.Context(), req.BaseURL)
	c.JSON(http.StatusOK, api.ProbeResult{
		OK:      status.OK,
		URL:     url,
		Error:   status.Error,
		Warning: status.Warning,
	})
}
