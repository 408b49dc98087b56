package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"tradebinder/internal/middleware"
	"tradebinder/internal/models"
	"tradebinder/internal/store"
	"tradebinder/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type wishlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) CreateWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req wishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateListName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	listID := uuid.NewString()
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.wishlists.CreateList(r.Context(), tx, listID, userID, req.Name, req.Description, false)
	})
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			respondError(w, http.StatusConflict, "list name already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create list")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": listID})
}

func (h *Handler) ListWishlists(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	lists, err := h.wishlists.ListLists(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load lists")
		return
	}
	respondJSON(w, http.StatusOK, lists)
}

func (h *Handler) UpdateWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req wishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateListName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	affected, err := h.wishlists.UpdateList(r.Context(), chi.URLParam(r, "id"), userID, req.Name, req.Description)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update list")
		return
	}
	if affected == 0 {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) DeleteWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.wishlists.DeleteList(r.Context(), tx, chi.URLParam(r, "id"), userID)
	})
	if err != nil {
		if errors.Is(err, store.ErrListNotFound) {
			respondError(w, http.StatusNotFound, "list not found")
			return
		}
		if errors.Is(err, store.ErrDefaultList) {
			respondError(w, http.StatusBadRequest, "default list cannot be deleted")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to delete list")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) ListWishlistItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	listID := chi.URLParam(r, "id")
	if _, err := h.wishlists.GetList(r.Context(), listID, userID); err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "list not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load list")
		return
	}
	items, err := h.wishlists.ListItems(r.Context(), listID, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load items")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

type wishlistItemRequest struct {
	CardID        string `json:"card_id"`
	Priority      int    `json:"priority"`
	MaxPrice      string `json:"max_price"`
	MaxPriceMinor *int64 `json:"max_price_minor"`
	Condition     string `json:"condition"`
	Notes         string `json:"notes"`
}

func (h *Handler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req wishlistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Priority == 0 {
		req.Priority = 3
	}
	if err := validator.ValidatePriority(req.Priority); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
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
	listID := chi.URLParam(r, "id")
	itemID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if listID == "default" {
			var err error
			listID, err = h.wishlists.GetDefaultList(r.Context(), tx, userID)
			if err != nil {
				return store.ErrListNotFound
			}
		} else if _, err := h.wishlists.GetList(r.Context(), listID, userID); err != nil {
			return store.ErrListNotFound
		}
		return h.wishlists.AddItem(r.Context(), tx, models.WishlistItem{
			ID:            itemID,
			ListID:        listID,
			UserID:        userID,
			CardID:        req.CardID,
			Priority:      req.Priority,
			MaxPriceMinor: maxPrice,
			Condition:     req.Condition,
			Notes:         req.Notes,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrListNotFound) {
			respondError(w, http.StatusNotFound, "list not found")
			return
		}
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			respondError(w, http.StatusConflict, "card already on this list")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to add item")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": itemID})
}

func (h *Handler) UpdateWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req wishlistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidatePriority(req.Priority); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Condition == "" {
		req.Condition = "any"
	}
	if err := validator.ValidateCondition(req.Condition); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	maxPrice, err := h.maxPriceMinor(r, userID, req.MaxPrice, req.MaxPriceMinor)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_max_price")
		return
	}
	affected, err := h.wishlists.UpdateItem(r.Context(), chi.URLParam(r, "itemID"), userID, req.Priority, maxPrice, req.Condition, req.Notes)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update item")
		return
	}
	if affected == 0 {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) DeleteWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.wishlists.DeleteItem(r.Context(), tx, chi.URLParam(r, "itemID"), userID)
	})
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to delete item")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type moveItemRequest struct {
	TargetListID string `json:"target_list_id"`
}

func (h *Handler) MoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req moveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetListID == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.wishlists.MoveItem(r.Context(), tx, chi.URLParam(r, "itemID"), userID, req.TargetListID)
	})
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		if errors.Is(err, store.ErrListNotFound) {
			respondError(w, http.StatusNotFound, "target list not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to move item")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}
