package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mathsoc-club/backend/internal/services"
	"github.com/mathsoc-club/backend/pkg/response"
)

// AlertHandler serves the homepage announcement banner. Alerts are short-lived
// and always read fresh; they never pass through the content caches.
type AlertHandler struct {
	alerts *services.AlertService
}

func NewAlertHandler(alerts *services.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// GET /api/alerts
func (h *AlertHandler) List(c *gin.Context) {
	alerts, err := h.alerts.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, alerts, &response.Meta{Count: len(alerts)})
}
