package handlers

import (
	"encoding/json"
	"net/http"

	"tradebinder/internal/middleware"
	"tradebinder/internal/models"
	"tradebinder/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type wantedPostRequest struct {
	CardID        string `json:"card_id"`
	MaxPrice      string `json:"max_price"`
	MaxPriceMinor *int64 `json:"max_price_minor"`
	Condition     string `json:"condition"`
	Notes         string `json:"notes"`
}

func (h *Handler) CreateWantedPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req wantedPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Condition == "" {
		req.Condition = "any"
	}
	if err := validator.ValidateCondition(req.Condition); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.cards.GetByID(r.Context(), req.CardID); err != nil {
		respondError(w, http.StatusNotFound, "card not found")
		return
	}
	maxPrice, err := h.maxPriceMinor(r, userID, req.MaxPrice, req.MaxPriceMinor)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_max_price")
		return
	}
	postID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.wanted.Create(r.Context(), tx, models.WantedPost{
			ID:            postID,
			UserID:        userID,
			CardID:        req.CardID,
			MaxPriceMinor: maxPrice,
			Condition:     req.Condition,
			Notes:         req.Notes,
		})
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create post")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": postID})
}

func (h *Handler) ListWantedPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 50)
	offset := (page - 1) * limit
	posts, err := h.wanted.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load wanted board")
		return
	}
	for _, post := range posts {
		if post["max_price_minor"] != nil {
			post["max_price"] = valueToMoney(post["max_price_minor"])
		}
	}
	respondJSON(w, http.StatusOK, posts)
}

func (h *Handler) DeleteWantedPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	affected, err := h.wanted.Delete(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete post")
		return
	}
	if affected == 0 {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
