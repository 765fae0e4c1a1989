package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/provider-relay/internal/relay"
)

type ProviderHandler struct {
	flow *relay.Flow
}

func NewProviderHandler(flow *relay.Flow) *ProviderHandler {
	return &ProviderHandler{flow: flow}
}

// List returns every provider name known to the registry with its routed
// flag and model count.
//
// GET /relay/v1/providers
func (h *ProviderHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   h.flow.KnownProviders(),
	})
}
