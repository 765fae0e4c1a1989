package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/provider-relay/internal/relay"
	"github.com/nulzo/provider-relay/pkg/api"
)

const defaultAuditLimit = 20

type AuditHandler struct {
	flow *relay.Flow
}

func NewAuditHandler(flow *relay.Flow) *AuditHandler {
	return &AuditHandler{flow: flow}
}

// Recent returns the latest reconciliation passes, newest first.
//
// GET /relay/v1/audit?limit=N
func (h *AuditHandler) Recent(c *gin.Context) {
	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			c.Error(api.BadRequestProblem("limit must be an integer between 1 and 500"))
			return
		}
		limit = n
	}

	entries, err := h.flow.RecentApplies(c.Request.Context(), limit)
	if err != nil {
		c.Error(api.InternalProblem("Failed to read audit log", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   entries,
	})
}
