package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tradebinder/internal/middleware"
	"tradebinder/internal/models"
	"tradebinder/internal/store"
	"tradebinder/internal/validator"
	"tradebinder/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type collectionRequest struct {
	CardID    string `json:"card_id"`
	Variant   string `json:"variant"`
	Condition string `json:"condition"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) AddToCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if !models.IsValidVariant(req.Variant) {
		respondError(w, http.StatusBadRequest, "invalid_variant")
		return
	}
	if req.Condition == "" {
		req.Condition = "near_mint"
	}
	if err := validator.ValidateCondition(req.Condition); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.cards.GetByID(r.Context(), req.CardID); err != nil {
		respondError(w, http.StatusNotFound, "card not found")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.collection.AddVariant(r.Context(), tx, uuid.NewString(), userID, req.CardID, req.Variant, req.Condition, req.Quantity); err != nil {
			return err
		}
		// A collected card no longer belongs on the owner's wishlists.
		return h.wishlists.RemoveByCard(r.Context(), tx, userID, req.CardID)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update collection")
		return
	}
	h.evaluateAchievements(r, userID)
	respondJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (h *Handler) RemoveFromCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.Condition == "" {
		req.Condition = "near_mint"
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.collection.RemoveVariant(r.Context(), tx, userID, req.CardID, req.Variant, req.Condition, req.Quantity)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotEnoughOwned) {
			respondError(w, http.StatusBadRequest, "not_enough_owned")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to update collection")
		return
	}
	h.evaluateAchievements(r, userID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) ListCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entries, err := h.collection.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load collection")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) CollectionStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	stats, err := h.collection.Stats(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stats")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"distinct_cards": stats.DistinctCards,
		"total_quantity": stats.TotalQuantity,
	})
}

func (h *Handler) CardVariants(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	counts, err := h.collection.VariantCounts(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load variants")
		return
	}
	total := 0
	variants := make([]map[string]any, 0, len(counts))
	for _, row := range counts {
		total = row.TotalQuantity
		variants = append(variants, map[string]any{
			"variant":  row.Variant,
			"quantity": row.Quantity,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total":    total,
		"variants": variants,
	})
}

// evaluateAchievements runs after a successful collection change; a failure
// never fails the request. Unlocks and revocations are pushed to the owner.
func (h *Handler) evaluateAchievements(r *http.Request, userID string) {
	if h.achievements == nil {
		return
	}
	unlocked, revoked, err := h.achievements.Evaluate(r.Context(), userID)
	if err != nil {
		log.Printf("achievement evaluation failed for %s: %v", userID, err)
		return
	}
	for _, achievement := range unlocked {
		h.events.Broadcast(userID, websocket.Event{
			Type:    "achievement_unlocked",
			Message: achievement.Name,
		})
	}
	for _, achievement := range revoked {
		h.events.Broadcast(userID, websocket.Event{
			Type:    "achievement_revoked",
			Message: achievement.Name,
		})
	}
}
