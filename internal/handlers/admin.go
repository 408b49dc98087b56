package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"tradebinder/internal/currency"
	"tradebinder/internal/middleware"
	"tradebinder/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) AdminUpsertSet(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var set models.Set
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil || set.ID == "" || set.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.sets.Upsert(r.Context(), tx, set); err != nil {
			return err
		}
		return h.audit.Log(r.Context(), tx, actorID, "set_upsert", "set", set.ID, "{}")
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save set")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": set.ID})
}

func (h *Handler) AdminUpsertCard(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var card models.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil || card.ID == "" || card.SetID == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.cards.Upsert(r.Context(), tx, card); err != nil {
			return err
		}
		return h.audit.Log(r.Context(), tx, actorID, "card_upsert", "card", card.ID, "{}")
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save card")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": card.ID})
}

type pricePointRequest struct {
	Variant          string `json:"variant"`
	Date             string `json:"date"`
	PriceMinor       int64  `json:"price_minor"`
	ReverseHoloMinor *int64 `json:"reverse_holo_minor"`
	TCGPlayerMinor   *int64 `json:"tcgplayer_minor"`
}

// AdminInsertPrice upserts one daily price point for a card variant and
// drops the card's cached series so the next chart request sees it.
func (h *Handler) AdminInsertPrice(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	cardID := chi.URLParam(r, "id")
	var req pricePointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PriceMinor <= 0 {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Variant == "" {
		req.Variant = models.VariantNormal
	}
	if !models.IsValidVariant(req.Variant) {
		respondError(w, http.StatusBadRequest, "invalid_variant")
		return
	}
	day := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		day = parsed
	}
	if _, err := h.cards.GetByID(r.Context(), cardID); err != nil {
		respondError(w, http.StatusNotFound, "card not found")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.priceWrites.Insert(r.Context(), tx, cardID, req.Variant, models.PricePoint{
			Date:             day,
			Price:            req.PriceMinor,
			ReverseHoloPrice: req.ReverseHoloMinor,
			TCGPlayerPrice:   req.TCGPlayerMinor,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]any{
			"variant": req.Variant,
			"day":     day.Format("2006-01-02"),
			"price":   req.PriceMinor,
		})
		return h.audit.Log(r.Context(), tx, actorID, "price_insert", "card", cardID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save price")
		return
	}
	h.prices.Invalidate(cardID)
	respondJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

type setRateRequest struct {
	QuoteCurrency string `json:"quote_currency"`
	Rate          string `json:"rate"`
}

func (h *Handler) AdminSetRate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req setRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !currency.IsSupported(req.QuoteCurrency) || req.QuoteCurrency == currency.Pivot {
		respondError(w, http.StatusBadRequest, "unsupported_currency")
		return
	}
	if err := currency.ValidateRate(req.Rate); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_rate")
		return
	}
	var rateID string
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		rateID, err = h.rates.SetRate(r.Context(), tx, currency.Pivot, req.QuoteCurrency, req.Rate, actorID)
		if err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"quote_currency": req.QuoteCurrency,
			"rate":           req.Rate,
		})
		return h.audit.Log(r.Context(), tx, actorID, "rate_set", "exchange_rate", rateID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to set rate")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": rateID})
}

type grantRoleRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req grantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to resolve user")
		return
	}
	targetID := valueToString(user["id"])
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.admin.GrantRole(r.Context(), tx, targetID, req.Role); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"role": req.Role})
		return h.audit.Log(r.Context(), tx, actorID, "role_grant", "user", targetID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to grant role")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "granted"})
}

type promoteRequest struct {
	Username string `json:"username"`
}

func (h *Handler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to resolve user")
		return
	}
	targetID := valueToString(user["id"])
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.admin.CreateAdmin(r.Context(), tx, targetID, false, &actorID); err != nil {
			return err
		}
		return h.audit.Log(r.Context(), tx, actorID, "admin_promote", "user", targetID, "{}")
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to promote user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "promoted"})
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 50)
	offset := (page - 1) * limit
	logs, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

// ReconcileTrade sums a completed trade's movement rows; anything other
// than zero means an item moved without its mirror row.
func (h *Handler) ReconcileTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "id")
	sum, err := h.movements.SumByTrade(r.Context(), tradeID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reconcile trade")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"trade_id": tradeID,
		"sum":      sum,
		"balanced": sum == 0,
	})
}
