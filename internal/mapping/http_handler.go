package mapping

import (
	"net/http"

	"github.com/cataloghq/erp-migration/internal/httpx"
)

// Handler exposes mapping suggestions over HTTP.
type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Suggest handles GET /api/sessions/{id}/mappings/{entity}.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := httpx.TenantID(w, r)
	if !ok {
		return
	}
	sessionID, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}

	suggestion, err := h.service.SuggestForSession(r.Context(), tenantID, sessionID, r.PathValue("entity"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, suggestion)
}
