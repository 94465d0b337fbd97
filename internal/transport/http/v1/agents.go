package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListAgents lists the configured agents in declaration order.
// GET /v1/agents
func (h *Handler) ListAgents(c echo.Context) error {
	agents := h.service.Agents()

	agentList := make([]map[string]interface{}, len(agents))
	for i, a := range agents {
		agentList[i] = map[string]interface{}{
			"name":          a.Name,
			"endpoint":      a.Endpoint,
			"enabled":       a.Enabled,
			"keywords":      a.Keywords,
			"description":   a.Description,
			"display_group": a.DisplayGroup,
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"agents": agentList,
	})
}
