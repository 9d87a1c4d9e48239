package template

import (
	"fmt"
	"net/http"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/httpx"
)

// Handler serves downloadable Excel templates.
type Handler struct {
	generator Generator
}

func NewHTTPHandler(generator Generator) *Handler {
	return &Handler{generator: generator}
}

// Download handles GET /api/templates/{entity}.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	entityType, err := domain.ParseEntityType(r.PathValue("entity"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	payload, err := h.generator.Generate(entityType)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s_template.xlsx", entityType)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
