package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
	"github.com/ternarybob/equitas/internal/services/auth"
)

// AuthHandler handles account signup and login
type AuthHandler struct {
	authService interfaces.AuthService
	logger      arbor.ILogger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService interfaces.AuthService, logger arbor.ILogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

type credentialsRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// SignupHandler handles POST /api/auth/signup
func (h *AuthHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req credentialsRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := h.authService.Signup(r.Context(), req.UserName, req.Password)
	if err != nil {
		var validationErr *auth.ValidationError
		switch {
		case errors.As(err, &validationErr):
			WriteError(w, http.StatusBadRequest, validationErr.Error())
		case errors.Is(err, interfaces.ErrUserExists):
			WriteError(w, http.StatusConflict, "User already exists")
		default:
			h.logger.Error().Err(err).Msg("Signup failed")
			WriteError(w, http.StatusInternalServerError, "Failed to create account")
		}
		return
	}

	WriteJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// LoginHandler handles POST /api/auth/login
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req credentialsRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidCredentials) {
			WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error().Err(err).Msg("Login failed")
		WriteError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	WriteJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
