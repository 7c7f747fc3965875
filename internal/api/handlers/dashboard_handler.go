package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/auth-api/internal/auth"
	"github.com/isdelr/auth-api/internal/services"
	"github.com/rs/zerolog/log"
)

// DashboardHandler serves the token-protected resources.
type DashboardHandler struct {
	service services.AuthServiceProvider
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service services.AuthServiceProvider) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// DashboardData describes the protected landing resource.
type DashboardData struct {
	Title string       `json:"title"`
	User  *auth.Claims `json:"user"`
}

// Index returns the decoded claims of the caller.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		respondError(w, http.StatusUnauthorized, "Access denied")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"error": nil,
		"data":  DashboardData{Title: "Protected route", User: claims},
	})
}

// GetMe retrieves the currently authenticated user from the store.
func (h *DashboardHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		respondError(w, http.StatusUnauthorized, "Access denied")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			log.Warn().Str("user_id", claims.UserID).Msg("User from token not found in DB")
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to load user")
		respondError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"error": nil, "data": user})
}
