package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/httpx"
)

// Handler exposes session lifecycle management over HTTP.
type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	SourceType string   `json:"source_type"`
	SourceName string   `json:"source_name"`
	Entities   []string `json:"entities"`
}

// Create handles POST /api/sessions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := httpx.TenantID(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	sourceType, err := domain.ParseSourceType(strings.TrimSpace(req.SourceType))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	entities := make([]domain.EntityType, 0, len(req.Entities))
	for _, token := range req.Entities {
		entityType, err := domain.ParseEntityType(token)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		entities = append(entities, entityType)
	}

	created, err := h.service.Create(r.Context(), tenantID, sourceType, strings.TrimSpace(req.SourceName), entities)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, created)
}

// List handles GET /api/sessions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := httpx.TenantID(w, r)
	if !ok {
		return
	}

	sessions, err := h.service.List(r.Context(), tenantID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessions)
}

// Get handles GET /api/sessions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := httpx.TenantID(w, r)
	if !ok {
		return
	}
	sessionID, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), tenantID, sessionID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, found)
}

// Cancel handles POST /api/sessions/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := httpx.TenantID(w, r)
	if !ok {
		return
	}
	sessionID, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}

	cancelled, err := h.service.Cancel(r.Context(), tenantID, sessionID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cancelled)
}
