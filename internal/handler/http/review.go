package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pmaxcam/review-website/internal/auth"
	"github.com/pmaxcam/review-website/internal/domain"
	"github.com/pmaxcam/review-website/internal/service"
	"github.com/pmaxcam/review-website/pkg/httputil"
	"github.com/pmaxcam/review-website/pkg/pagination"
	"github.com/pmaxcam/review-website/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateReviewRequest is the JSON request body for creating a review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content" validate:"max=10000"`
}

// UpdateReviewRequest is the JSON request body for a partial review update.
// Omitted fields are left unchanged.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Content *string `json:"content" validate:"omitempty,max=10000"`
}

// --- Handlers ---

// ListProductReviews handles GET /api/products/{id}/reviews
// @Summary List product reviews
// @Description Returns published reviews with their authors, newest first
// @Tags reviews
// @Produce json
// @Param id path string true "Product UUID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Success 200 {object} service.ProductReviewsResult
// @Failure 400 {object} httputil.ErrorBody
// @Router /api/products/{id}/reviews [get]
func (h *ReviewHandler) ListProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "id"), "Product not found")
	if !ok {
		return
	}

	result, err := h.service.ListProductReviews(r.Context(), productID, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// CreateReview handles POST /api/products/{id}/reviews
// @Summary Review a product
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Product UUID"
// @Param request body CreateReviewRequest true "Review to submit"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} httputil.ErrorBody
// @Failure 401 {object} httputil.ErrorBody
// @Failure 404 {object} httputil.ErrorBody
// @Failure 409 {object} httputil.ErrorBody
// @Router /api/products/{id}/reviews [post]
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "id"), "Product not found")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.CreateReview(r.Context(), auth.IdentityFromContext(r.Context()), productID, &service.CreateReviewInput{
		Rating:  req.Rating,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"review": review})
}

// GetReview handles GET /api/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"), "Review not found")
	if !ok {
		return
	}

	review, err := h.service.GetReview(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"review": review})
}

// UpdateReview handles PUT /api/reviews/{id}
// @Summary Update own review
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Review UUID"
// @Param request body UpdateReviewRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} httputil.ErrorBody
// @Failure 401 {object} httputil.ErrorBody
// @Failure 403 {object} httputil.ErrorBody
// @Failure 404 {object} httputil.ErrorBody
// @Router /api/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"), "Review not found")
	if !ok {
		return
	}

	// Existence and ownership are settled before the body is read.
	review, err := h.service.EditableReview(r.Context(), auth.IdentityFromContext(r.Context()), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var req UpdateReviewRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err = h.service.ApplyReviewUpdate(r.Context(), review, domain.ReviewUpdate{
		Rating:  req.Rating,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"review": review})
}

// DeleteReview handles DELETE /api/reviews/{id}
// @Summary Delete own review
// @Tags reviews
// @Produce json
// @Param id path string true "Review UUID"
// @Success 200 {object} httputil.MessageBody
// @Failure 401 {object} httputil.ErrorBody
// @Failure 403 {object} httputil.ErrorBody
// @Failure 404 {object} httputil.ErrorBody
// @Router /api/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"), "Review not found")
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), auth.IdentityFromContext(r.Context()), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Review deleted successfully")
}

// ListMyReviews handles GET /api/users/me/reviews
func (h *ReviewHandler) ListMyReviews(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListUserReviews(r.Context(), auth.IdentityFromContext(r.Context()), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
