package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"tradebinder/internal/currency"
	"tradebinder/internal/middleware"
	"tradebinder/internal/models"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":       valueToString(user["id"]),
		"username": valueToString(user["username"]),
	})
}

type preferencesRequest struct {
	Currency    string `json:"currency"`
	PriceSource string `json:"price_source"`
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !currency.IsSupported(req.Currency) {
		respondError(w, http.StatusBadRequest, "unsupported_currency")
		return
	}
	if req.PriceSource != models.PriceSourceCardmarket && req.PriceSource != models.PriceSourceTCGPlayer {
		respondError(w, http.StatusBadRequest, "unsupported_price_source")
		return
	}
	if err := h.users.UpdatePreferences(r.Context(), userID, req.Currency, req.PriceSource); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update preferences")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"currency":     req.Currency,
		"price_source": req.PriceSource,
	})
}
