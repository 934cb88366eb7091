package stats

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/property-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Service:     service,
	}
}

// GetDashboard handles GET /api/v1/stats/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	snapshot, err := h.Service.GetDashboardStats(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, snapshot)
}
