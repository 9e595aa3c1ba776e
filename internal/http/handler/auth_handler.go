package handler

import (
	"net/http"

	"github.com/straye-as/attendance-api/internal/auth"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/service"
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

// AdminLogin godoc
// @Summary Admin login
// @Description Start an admin session with the admin password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.AdminLoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 429 {object} domain.APIError
// @Router /auth/admin/login [post]
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.authService.LoginAdmin(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to log in")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// StudentLogin godoc
// @Summary Student login
// @Description Start a student session with roster id, name, department and today's code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.StudentLoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError "Unknown student, mismatching name/department, or missing/expired/wrong daily code"
// @Failure 429 {object} domain.APIError
// @Router /auth/student/login [post]
func (h *AuthHandler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.StudentLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.authService.LoginStudent(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to log in")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Logout godoc
// @Summary Log out
// @Description End the current session; the token stops working immediately
// @Tags Auth
// @Success 204
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.authService.Logout(r.Context(), userCtx.SessionID); err != nil {
		handleServiceError(w, h.logger, err, "Failed to log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
// @Summary Get current user
// @Description Returns the user behind the current session
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.UserDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	respondJSON(w, http.StatusOK, userCtx.User())
}
