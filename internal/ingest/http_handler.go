package ingest

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/httpx"
)

// Handler exposes file upload as an HTTP endpoint.
type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload handles POST /api/sessions/{id}/upload. The upload is a multipart
// form with a "file" part and an "entityType" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := httpx.TenantID(w, r)
	if !ok {
		return
	}
	sessionID, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	entityType, err := domain.ParseEntityType(strings.TrimSpace(r.FormValue("entityType")))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return
	}

	summary, err := h.service.Ingest(r.Context(), Request{
		TenantID:   tenantID,
		SessionID:  sessionID,
		EntityType: entityType,
		FileName:   header.Filename,
		Payload:    payload,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}
