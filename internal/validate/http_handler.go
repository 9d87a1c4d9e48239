package validate

import (
	"context"
	"net/http"

	"github.com/cataloghq/erp-migration/internal/httpx"
)

// Handler exposes the validation run over HTTP.
type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Run handles POST /api/sessions/{id}/validate. The run is synchronous and
// detached from the request context so a dropped client cannot fail a session
// mid-flight.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := httpx.TenantID(w, r)
	if !ok {
		return
	}
	sessionID, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}

	finished, err := h.service.Run(context.WithoutCancel(r.Context()), tenantID, sessionID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, finished)
}
