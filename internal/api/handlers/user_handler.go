package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/isdelr/auth-api/internal/auth"
	"github.com/isdelr/auth-api/internal/metrics"
	"github.com/isdelr/auth-api/internal/models"
	"github.com/isdelr/auth-api/internal/services"
	"github.com/rs/zerolog/log"
)

// RecoveryMailer delivers reset links. Implementations must not return
// delivery errors to the caller.
type RecoveryMailer interface {
	SendRecoveryEmail(ctx context.Context, email, token string)
}

// UserHandler handles the /api/user endpoints.
type UserHandler struct {
	service services.AuthServiceProvider
	metrics *metrics.Metrics
	mailer  RecoveryMailer
}

// NewUserHandler creates a new UserHandler. metrics and mailer may be nil.
func NewUserHandler(service services.AuthServiceProvider, m *metrics.Metrics, mailer RecoveryMailer) *UserHandler {
	return &UserHandler{service: service, metrics: m, mailer: mailer}
}

// RegisterResponse is the body of a successful registration.
type RegisterResponse struct {
	Error *string     `json:"error"`
	Data  models.User `json:"data"`
}

// LoginData carries the issued token.
type LoginData struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Error   *string   `json:"error"`
	Data    LoginData `json:"data"`
	Message string    `json:"message"`
}

// ResetResponse is the body of a successful reset request.
type ResetResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// MessageResponse is a body with a single message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload services.RegisterInput
	if err := decodeJSON(w, r, &payload); err != nil {
		h.reject(w, "register", http.StatusBadRequest, decodeFailure(err))
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			h.reject(w, "register", http.StatusBadRequest, verr.Message)
		case errors.Is(err, services.ErrDuplicateEmail):
			h.reject(w, "register", http.StatusBadRequest, "Email already registered")
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
			h.fail(w, "register", "Failed to register user")
		}
		return
	}

	h.metrics.Record("register", metrics.OutcomeSuccess)
	respondJSON(w, http.StatusOK, RegisterResponse{Data: user})
}

// Login handles user authentication and token issuance.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload services.LoginInput
	if err := decodeJSON(w, r, &payload); err != nil {
		h.reject(w, "login", http.StatusBadRequest, decodeFailure(err))
		return
	}

	res, err := h.service.Login(r.Context(), payload)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			h.reject(w, "login", http.StatusBadRequest, verr.Message)
		case errors.Is(err, services.ErrUserNotFound):
			h.reject(w, "login", http.StatusBadRequest, "User not found")
		case errors.Is(err, services.ErrInvalidCredentials):
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			h.reject(w, "login", http.StatusBadRequest, "Invalid password")
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to log in user")
			h.fail(w, "login", "Failed to log in")
		}
		return
	}

	h.metrics.Record("login", metrics.OutcomeSuccess)
	w.Header().Set(auth.TokenHeader, res.Token)
	respondJSON(w, http.StatusOK, LoginResponse{
		Data: LoginData{
			Token:  res.Token,
			UserID: res.User.ID,
			Name:   res.User.Name,
		},
		Message: "Welcome " + res.User.Name,
	})
}

// ResetPassword issues a short-lived reset token and, when a mailer is
// configured, emails the reset link in the background.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload services.ResetRequestInput
	if err := decodeJSON(w, r, &payload); err != nil {
		h.reject(w, "reset_password", http.StatusBadRequest, decodeFailure(err))
		return
	}

	token, err := h.service.RequestPasswordReset(r.Context(), payload)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			h.reject(w, "reset_password", http.StatusBadRequest, verr.Message)
		case errors.Is(err, services.ErrUserNotFound):
			h.reject(w, "reset_password", http.StatusBadRequest, "User not found")
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to issue reset token")
			h.fail(w, "reset_password", "Failed to reset password")
		}
		return
	}

	if h.mailer != nil {
		go h.mailer.SendRecoveryEmail(context.WithoutCancel(r.Context()), payload.Email, token)
	}

	h.metrics.Record("reset_password", metrics.OutcomeSuccess)
	respondJSON(w, http.StatusOK, ResetResponse{Message: "User found", Token: token})
}

// UpdatePassword sets a new password using a reset token.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var payload services.UpdatePasswordInput
	if err := decodeJSON(w, r, &payload); err != nil {
		h.reject(w, "update_password", http.StatusBadRequest, decodeFailure(err))
		return
	}

	err := h.service.UpdatePassword(r.Context(), payload)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.Is(err, services.ErrInvalidToken):
			h.reject(w, "update_password", http.StatusUnauthorized, "Invalid or expired token")
		case errors.As(err, &verr):
			h.reject(w, "update_password", http.StatusBadRequest, verr.Message)
		case errors.Is(err, services.ErrUserNotFound):
			h.reject(w, "update_password", http.StatusNotFound, "User not found")
		default:
			log.Error().Err(err).Msg("Failed to update password")
			h.fail(w, "update_password", "Failed to update password")
		}
		return
	}

	h.metrics.Record("update_password", metrics.OutcomeSuccess)
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}

func (h *UserHandler) reject(w http.ResponseWriter, operation string, status int, msg string) {
	h.metrics.Record(operation, metrics.OutcomeRejected)
	respondError(w, status, msg)
}

func (h *UserHandler) fail(w http.ResponseWriter, operation, msg string) {
	h.metrics.Record(operation, metrics.OutcomeError)
	respondError(w, http.StatusInternalServerError, msg)
}
