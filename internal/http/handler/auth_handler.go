package handler

import (
	"net/http"

	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// SignUp godoc
// @Summary Create a staff account
// @Description The first account becomes the manager. Afterwards a role can only be chosen by a manager; other sign-ups become mechanics.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.SignUpRequest true "Account data"
// @Success 201 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req domain.SignUpRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	user, err := h.authService.SignUp(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, "sign up", err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// SignIn godoc
// @Summary Sign in
// @Description Verifies credentials and returns a bearer token bound to a new session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.SignInRequest true "Credentials"
// @Success 200 {object} domain.SignInResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 429 {object} domain.APIError
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req domain.SignInRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := h.authService.SignIn(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, "sign in", err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// SignOut godoc
// @Summary Sign out
// @Description Ends the current session; its token is rejected afterwards
// @Tags Auth
// @Success 204
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOut(r.Context()); err != nil {
		respondServiceError(w, h.logger, "sign out", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
// @Summary Get current user
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.UserDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Me(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "get current user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// RequestPasswordReset godoc
// @Summary Request a password reset
// @Description Always answers 202 so addresses cannot be probed
// @Tags Auth
// @Accept json
// @Param request body domain.PasswordResetRequest true "Account email"
// @Success 202
// @Failure 400 {object} domain.APIError
// @Router /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.authService.RequestPasswordReset(r.Context(), &req); err != nil {
		respondServiceError(w, h.logger, "request password reset", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ConfirmPasswordReset godoc
// @Summary Set a new password with a reset token
// @Tags Auth
// @Accept json
// @Param request body domain.PasswordResetConfirmRequest true "Token and new password"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetConfirmRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.authService.ConfirmPasswordReset(r.Context(), &req); err != nil {
		respondServiceError(w, h.logger, "confirm password reset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMechanics godoc
// @Summary List mechanics
// @Description Active users that can be assigned to work orders
// @Tags Users
// @Produce json
// @Success 200 {array} domain.UserDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users/mechanics [get]
func (h *AuthHandler) ListMechanics(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListMechanics(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "list mechanics", err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}
