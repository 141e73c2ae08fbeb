package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pmaxcam/review-website/internal/auth"
	"github.com/pmaxcam/review-website/internal/service"
	"github.com/pmaxcam/review-website/pkg/httputil"
	"github.com/pmaxcam/review-website/pkg/pagination"
	"github.com/pmaxcam/review-website/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for submitting a product.
// Presence of each field is checked by the service.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"max=200"`
	Description string `json:"description" validate:"max=5000"`
	WebsiteURL  string `json:"website_url" validate:"omitempty,url,max=2048"`
	Category    string `json:"category" validate:"max=100"`
}

// --- Handlers ---

// ListProducts handles GET /api/products
// @Summary List products
// @Description Returns products newest first with pagination metadata
// @Tags products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Success 200 {object} service.ProductListResult
// @Failure 400 {object} httputil.ErrorBody
// @Router /api/products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListProducts(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// SearchProducts handles GET /api/products/search?q=
// @Summary Search products
// @Description Case-insensitive substring match on name or description
// @Tags products
// @Produce json
// @Param q query string true "Search text"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Success 200 {object} service.ProductListResult
// @Failure 400 {object} httputil.ErrorBody
// @Router /api/products/search [get]
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SearchProducts(r.Context(), r.URL.Query().Get("q"), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"), "Product not found")
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"product": product})
}

// CreateProduct handles POST /api/products
// @Summary Submit a product
// @Tags products
// @Accept json
// @Produce json
// @Param request body CreateProductRequest true "Product to submit"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} httputil.ErrorBody
// @Failure 401 {object} httputil.ErrorBody
// @Router /api/products [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), auth.IdentityFromContext(r.Context()), &service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		WebsiteURL:  req.WebsiteURL,
		Category:    req.Category,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"product": product})
}
