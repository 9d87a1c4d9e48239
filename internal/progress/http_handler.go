package progress

import (
	"net/http"

	"github.com/cataloghq/erp-migration/internal/httpx"
)

// Handler exposes progress snapshots over HTTP.
type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Snapshot handles GET /api/sessions/{id}/progress.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := httpx.TenantID(w, r)
	if !ok {
		return
	}
	sessionID, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}

	snapshot, err := h.service.Snapshot(r.Context(), tenantID, sessionID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, snapshot)
}
