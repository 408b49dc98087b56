package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"tradebinder/internal/middleware"
	"tradebinder/internal/models"
	"tradebinder/internal/services"

	"github.com/go-chi/chi/v5"
)

type tradeItemRequest struct {
	UserID    string `json:"user_id"`
	CardID    string `json:"card_id"`
	Variant   string `json:"variant"`
	Condition string `json:"condition"`
	Quantity  int    `json:"quantity"`
}

type proposeTradeRequest struct {
	RecipientUsername   string             `json:"recipient_username"`
	Items               []tradeItemRequest `json:"items"`
	InitiatorMoneyMinor int64              `json:"initiator_money_minor"`
	RecipientMoneyMinor int64              `json:"recipient_money_minor"`
	ShippingIncluded    bool               `json:"shipping_included"`
	Message             string             `json:"message"`
	ExpiresInHours      int                `json:"expires_in_hours"`
}

func (h *Handler) ProposeTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req proposeTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	recipient, err := h.users.GetByUsername(r.Context(), req.RecipientUsername)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "recipient not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to resolve recipient")
		return
	}
	recipientID := valueToString(recipient["id"])
	areFriends, err := h.friends.AreFriends(r.Context(), userID, recipientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify friendship")
		return
	}
	if !areFriends {
		respondError(w, http.StatusForbidden, "can only trade with friends")
		return
	}
	items := make([]services.ProposedItem, 0, len(req.Items))
	for _, item := range req.Items {
		owner := item.UserID
		if owner == "" {
			owner = userID
		}
		items = append(items, services.ProposedItem{
			UserID:    owner,
			CardID:    item.CardID,
			Variant:   item.Variant,
			Condition: item.Condition,
			Quantity:  item.Quantity,
		})
	}
	var expiresAt *time.Time
	if req.ExpiresInHours > 0 {
		t := time.Now().Add(time.Duration(req.ExpiresInHours) * time.Hour)
		expiresAt = &t
	}
	tradeID, err := h.tradeService.Propose(r.Context(), services.ProposeRequest{
		InitiatorID:         userID,
		RecipientID:         recipientID,
		Items:               items,
		InitiatorMoneyMinor: req.InitiatorMoneyMinor,
		RecipientMoneyMinor: req.RecipientMoneyMinor,
		ShippingIncluded:    req.ShippingIncluded,
		Message:             req.Message,
		ExpiresAt:           expiresAt,
	})
	if err != nil {
		respondTradeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"trade_id": tradeID})
}

func (h *Handler) GetTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	tradeID := chi.URLParam(r, "id")
	trade, err := h.trades.GetByID(r.Context(), tradeID)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "trade not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load trade")
		return
	}
	if trade.InitiatorID != userID && trade.RecipientID != userID {
		respondError(w, http.StatusForbidden, "trade access denied")
		return
	}
	items, err := h.trades.ListItems(r.Context(), tradeID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load trade items")
		return
	}
	cardIDs := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !seen[item.CardID] {
			seen[item.CardID] = true
			cardIDs = append(cardIDs, item.CardID)
		}
	}
	cardsByID := make(map[string]models.Card, len(cardIDs))
	if len(cardIDs) > 0 {
		cards, err := h.cards.GetByIDs(r.Context(), cardIDs)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to load trade items")
			return
		}
		for _, card := range cards {
			cardsByID[card.ID] = card
		}
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		entry := map[string]any{
			"id":        item.ID,
			"user_id":   item.UserID,
			"card_id":   item.CardID,
			"variant":   item.Variant,
			"condition": item.Condition,
			"quantity":  item.Quantity,
		}
		if card, ok := cardsByID[item.CardID]; ok {
			entry["card_name"] = card.Name
			entry["card_image"] = card.ImageSmall
		}
		out = append(out, entry)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"trade": trade,
		"items": out,
	})
}

func (h *Handler) ListTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 20)
	offset := (page - 1) * limit
	trades, err := h.trades.ListByUser(r.Context(), userID, query.Get("status"), query.Get("role"), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load trades")
		return
	}
	respondJSON(w, http.StatusOK, trades)
}

func (h *Handler) AcceptTrade(w http.ResponseWriter, r *http.Request) {
	h.transitionTrade(w, r, h.tradeService.Accept)
}

func (h *Handler) DeclineTrade(w http.ResponseWriter, r *http.Request) {
	h.transitionTrade(w, r, h.tradeService.Decline)
}

func (h *Handler) CancelTrade(w http.ResponseWriter, r *http.Request) {
	h.transitionTrade(w, r, h.tradeService.Cancel)
}

func (h *Handler) CompleteTrade(w http.ResponseWriter, r *http.Request) {
	h.transitionTrade(w, r, h.tradeService.Complete)
}

func (h *Handler) transitionTrade(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, tradeID, userID string) error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := fn(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondTradeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type counterTradeRequest struct {
	InitiatorMoneyMinor int64  `json:"initiator_money_minor"`
	RecipientMoneyMinor int64  `json:"recipient_money_minor"`
	Message             string `json:"message"`
	ExpiresInHours      int    `json:"expires_in_hours"`
}

func (h *Handler) CounterTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req counterTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	var expiresAt *time.Time
	if req.ExpiresInHours > 0 {
		t := time.Now().Add(time.Duration(req.ExpiresInHours) * time.Hour)
		expiresAt = &t
	}
	newTradeID, err := h.tradeService.Counter(r.Context(), services.CounterRequest{
		TradeID:             chi.URLParam(r, "id"),
		UserID:              userID,
		InitiatorMoneyMinor: req.InitiatorMoneyMinor,
		RecipientMoneyMinor: req.RecipientMoneyMinor,
		Message:             req.Message,
		ExpiresAt:           expiresAt,
	})
	if err != nil {
		respondTradeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"trade_id": newTradeID})
}

func (h *Handler) ClearTradeHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	removed, err := h.tradeService.ClearHistory(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to clear history")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func respondTradeError(w http.ResponseWriter, err error) {
	switch err {
	case services.ErrTradeNotFound:
		respondError(w, http.StatusNotFound, "trade_not_found")
	case services.ErrNotYourTrade:
		respondError(w, http.StatusForbidden, "trade_access_denied")
	case services.ErrNotRecipient:
		respondError(w, http.StatusForbidden, "only_recipient_can_respond")
	case services.ErrInvalidTransition:
		respondError(w, http.StatusConflict, "invalid_trade_state")
	case services.ErrTradeExpired:
		respondError(w, http.StatusBadRequest, "trade_expired")
	case services.ErrSelfTrade:
		respondError(w, http.StatusBadRequest, "cannot_trade_with_yourself")
	case services.ErrNoItems:
		respondError(w, http.StatusBadRequest, "trade_is_empty")
	case services.ErrInvalidItem:
		respondError(w, http.StatusBadRequest, "invalid_trade_item")
	case services.ErrCardNotOwned:
		respondError(w, http.StatusBadRequest, "card_not_owned")
	default:
		respondError(w, http.StatusInternalServerError, "trade_failed")
	}
}
