package handlers

import (
	"net/http"

	"tradebinder/internal/middleware"
	"tradebinder/internal/models"
	"tradebinder/internal/money"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	variant := query.Get("variant")
	if variant == "" {
		variant = models.VariantNormal
	}
	if !models.IsValidVariant(variant) {
		respondError(w, http.StatusBadRequest, "invalid_variant")
		return
	}
	days := parseInt(query.Get("days"), 30)
	fillGaps := query.Get("fill_gaps") != "false"

	points, err := h.prices.History(r.Context(), chi.URLParam(r, "id"), variant, days, fillGaps)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load price history")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	userCurrency := valueToString(user["currency"])

	out := make([]map[string]any, 0, len(points))
	for _, point := range points {
		converted, err := h.converter.Convert(r.Context(), point.Price, userCurrency)
		if err != nil {
			converted = point.Price
		}
		out = append(out, map[string]any{
			"date":  point.Date.Format("2006-01-02"),
			"price": money.FormatMinor(converted),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"card_id":  chi.URLParam(r, "id"),
		"variant":  variant,
		"currency": userCurrency,
		"points":   out,
	})
}
