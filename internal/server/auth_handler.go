package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/talent-pool/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		validator:   validator.New(),
		logger:      logger,
	}
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(h.logger, w, http.StatusBadRequest, failure("Invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSON(h.logger, w, http.StatusBadRequest, failure(extractValidationErrors(err)))
		return
	}

	session, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "login failed", "error", err)
			writeJSON(h.logger, w, status, failure("Internal server error"))
			return
		}
		writeJSON(h.logger, w, status, failure(err.Error()))
		return
	}

	token, err := h.jwtService.GenerateToken(*session)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to generate token", "error", err)
		writeJSON(h.logger, w, http.StatusInternalServerError, failure("Failed to generate token"))
		return
	}

	writeJSON(h.logger, w, http.StatusOK, types.LoginResponse{Session: *session, Token: token})
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		// Return first validation error for simplicity
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
