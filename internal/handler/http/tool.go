package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pmaxcam/review-website/internal/service"
	"github.com/pmaxcam/review-website/pkg/httputil"
	"github.com/pmaxcam/review-website/pkg/pagination"
)

// ToolHandler serves the featured tools catalog.
type ToolHandler struct {
	service *service.ToolService
	logger  *slog.Logger
}

// NewToolHandler creates a new tool HTTP handler.
func NewToolHandler(svc *service.ToolService, logger *slog.Logger) *ToolHandler {
	return &ToolHandler{service: svc, logger: logger}
}

// ListTools handles GET /api/tools?category=
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	result := h.service.ListTools(r.URL.Query().Get("category"), pagination.FromRequest(r))
	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetTool handles GET /api/tools/{id}
func (h *ToolHandler) GetTool(w http.ResponseWriter, r *http.Request) {
	tool, err := h.service.GetTool(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tool": tool})
}
