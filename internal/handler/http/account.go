package http

import (
	"log/slog"
	"net/http"

	"github.com/pmaxcam/review-website/internal/auth"
	"github.com/pmaxcam/review-website/internal/service"
	"github.com/pmaxcam/review-website/pkg/httputil"
	"github.com/pmaxcam/review-website/pkg/validator"
)

// AccountHandler handles HTTP requests for authentication endpoints.
type AccountHandler struct {
	service *service.AccountService
	cookie  auth.CookieConfig
	logger  *slog.Logger
}

// NewAccountHandler creates a new account HTTP handler.
func NewAccountHandler(svc *service.AccountService, cookie auth.CookieConfig, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		service: svc,
		cookie:  cookie,
		logger:  logger,
	}
}

// --- Request DTOs ---

// SignUpRequest is the JSON request body for registering an account.
type SignUpRequest struct {
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password"`
	FullName string `json:"full_name" validate:"max=200"`
	// FullNameCamel accepts the camelCase key sent by older clients.
	FullNameCamel string `json:"fullName" validate:"max=200"`
}

func (r SignUpRequest) fullName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.FullNameCamel
}

// LoginRequest is the JSON request body for opening a session.
type LoginRequest struct {
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password"`
}

// ResetPasswordRequest is the JSON request body for requesting a reset link.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"max=254"`
}

// UpdatePasswordRequest is the JSON request body for completing a reset.
type UpdatePasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// --- Handlers ---

// CurrentUser handles GET /api/auth/user
func (h *AccountHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Verifies credentials and sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} httputil.ErrorBody
// @Failure 401 {object} httputil.ErrorBody
// @Failure 429 {object} httputil.ErrorBody
// @Router /api/auth/login [post]
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.cookie.Set(w, result.Token, result.ExpiresAt)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": result.User})
}

// Logout handles POST /api/auth/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), h.cookie.TokenFromRequest(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.cookie.Clear(w)
	httputil.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

// SignUp handles POST /api/auth/signup
// @Summary Register an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "Account details"
// @Success 201 {object} httputil.MessageBody
// @Failure 400 {object} httputil.ErrorBody
// @Failure 409 {object} httputil.ErrorBody
// @Router /api/auth/signup [post]
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	_, err := h.service.SignUp(r.Context(), &service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.fullName(),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteMessage(w, http.StatusCreated, "User created successfully")
}

// RequestPasswordReset handles POST /api/auth/reset-password
func (h *AccountHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, service.PasswordResetSentMessage)
}

// UpdatePassword handles POST /api/auth/update-password
func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req UpdatePasswordRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Password updated successfully")
}
