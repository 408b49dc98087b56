package handlers

import (
	"database/sql"
	"net/http"

	"tradebinder/internal/middleware"
	"tradebinder/internal/models"
	"tradebinder/internal/money"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.sets.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sets")
		return
	}
	respondJSON(w, http.StatusOK, sets)
}

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 50)
	offset := (page - 1) * limit
	cards, err := h.cards.List(r.Context(), query.Get("set_id"), query.Get("rarity"), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load cards")
		return
	}
	respondJSON(w, http.StatusOK, cards)
}

func (h *Handler) SearchCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	matches, err := h.search.Search(r.Context(), query.Get("q"), parseInt(query.Get("limit"), 25))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "search failed")
		return
	}
	respondJSON(w, http.StatusOK, matches)
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	card, err := h.cards.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "card not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load card")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	userCurrency := valueToString(user["currency"])
	priceSource := valueToString(user["price_source"])

	display := map[string]any{"currency": userCurrency, "source": priceSource}
	if priceMinor := resolvePrice(card, priceSource); priceMinor != nil {
		converted, err := h.converter.Convert(r.Context(), *priceMinor, userCurrency)
		if err == nil {
			display["price"] = money.FormatMinor(converted)
		} else {
			// Fall back to the stored EUR price rather than hiding it.
			display["price"] = money.FormatMinor(*priceMinor)
			display["currency"] = "EUR"
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"card":          card,
		"display_price": display,
	})
}

// resolvePrice picks the headline price for a card from the user's preferred
// source, falling back within the source before giving up.
func resolvePrice(card models.Card, source string) *int64 {
	if source == models.PriceSourceTCGPlayer {
		if card.TCGPlayerMarket != nil {
			return card.TCGPlayerMarket
		}
		return card.TCGPlayerLow
	}
	if card.CardmarketTrend != nil {
		return card.CardmarketTrend
	}
	if card.CardmarketAvg != nil {
		return card.CardmarketAvg
	}
	return card.CardmarketLow
}
