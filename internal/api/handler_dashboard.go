package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns the headline counts and recent activity.
func (h *Handler) GetDashboard(c *gin.Context) {
	summary, err := h.store.Dashboard(c.Request.Context(), h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
