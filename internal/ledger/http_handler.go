package ledger

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/httpx"
)

// Handler exposes ledger reads and record-level updates over HTTP.
type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListRecords handles GET /api/sessions/{id}/records. Paging and filters come
// from query parameters: page, page_size, status and entity_type.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := httpx.TenantID(w, r)
	if !ok {
		return
	}
	sessionID, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}

	params := ListParams{PageNumber: 1, PageSize: 50}
	query := r.URL.Query()
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid page: %v", err), http.StatusBadRequest)
			return
		}
		params.PageNumber = page
	}
	if raw := query.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid page_size: %v", err), http.StatusBadRequest)
			return
		}
		params.PageSize = size
	}
	if raw := query.Get("status"); raw != "" {
		status, ok := domain.ParseValidationStatus(raw)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown status %q", raw), http.StatusBadRequest)
			return
		}
		params.Status = &status
	}
	if raw := query.Get("entity_type"); raw != "" {
		entityType, err := domain.ParseEntityType(raw)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		params.EntityType = &entityType
	}

	page, err := h.service.ListPage(r.Context(), tenantID, sessionID, params)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

// Summary handles GET /api/sessions/{id}/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := httpx.TenantID(w, r)
	if !ok {
		return
	}
	sessionID, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}

	counts, err := h.service.Summary(r.Context(), tenantID, sessionID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, counts)
}

// Reconcile handles POST /api/sessions/{id}/reconcile. It recomputes the
// session counters from the ledger rows and returns the repaired session.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := httpx.TenantID(w, r)
	if !ok {
		return
	}
	sessionID, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}

	repaired, err := h.service.Reconcile(r.Context(), tenantID, sessionID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, repaired)
}

type upsertRequest struct {
	Status     string          `json:"status"`
	Errors     []string        `json:"errors"`
	Warnings   []string        `json:"warnings"`
	FixedData  json.RawMessage `json:"fixed_data"`
	UserAction string          `json:"user_action"`
}

// UpdateRecord handles PATCH /api/records/{id}. Setting user_action to "skip"
// forces the record out of import eligibility regardless of status.
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	if _, ok := httpx.TenantID(w, r); !ok {
		return
	}
	recordID, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}

	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	status, ok := domain.ParseValidationStatus(strings.TrimSpace(req.Status))
	if !ok {
		http.Error(w, fmt.Sprintf("unknown status %q", req.Status), http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpsertStatus(r.Context(), recordID, UpsertInput{
		Status:     status,
		Errors:     req.Errors,
		Warnings:   req.Warnings,
		FixedData:  req.FixedData,
		UserAction: strings.TrimSpace(req.UserAction),
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}
