package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"tradebinder/internal/models"
	"tradebinder/internal/store"
)

func superAdmin() stubAdminStore {
	return stubAdminStore{
		isAdminFn: func(context.Context, string) (bool, bool, error) { return true, true, nil },
	}
}

func TestAdminSetRate(t *testing.T) {
	var gotQuote, gotRate string
	admin := superAdmin()
	handler := newTestHandler(Deps{
		Admin: admin,
		Rates: stubRateStore{
			setRateFn: func(_ context.Context, _ store.Tx, baseCurrency, quoteCurrency, rate string, actorID string) (string, error) {
				if baseCurrency != "EUR" {
					t.Fatalf("rates must be quoted against EUR, got %s", baseCurrency)
				}
				gotQuote, gotRate = quoteCurrency, rate
				return "rate-1", nil
			},
		},
	})
	body := []byte(`{"quote_currency":"USD","rate":"1.085"}`)
	rr := serveAuthed(t, handler, http.MethodPost, "/admin/rates", body, "admin-1")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotQuote != "USD" || gotRate != "1.085" {
		t.Fatalf("unexpected rate args: %s %s", gotQuote, gotRate)
	}
}

func TestAdminSetRateRejectsPivot(t *testing.T) {
	handler := newTestHandler(Deps{Admin: superAdmin()})
	body := []byte(`{"quote_currency":"EUR","rate":"1.0"}`)
	rr := serveAuthed(t, handler, http.MethodPost, "/admin/rates", body, "admin-1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestAdminSetRateRejectsBadRate(t *testing.T) {
	handler := newTestHandler(Deps{Admin: superAdmin()})
	body := []byte(`{"quote_currency":"USD","rate":"-3"}`)
	rr := serveAuthed(t, handler, http.MethodPost, "/admin/rates", body, "admin-1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	handler := newTestHandler(Deps{
		Admin: stubAdminStore{
			isAdminFn: func(context.Context, string) (bool, bool, error) { return false, false, nil },
		},
	})
	body := []byte(`{"quote_currency":"USD","rate":"1.085"}`)
	rr := serveAuthed(t, handler, http.MethodPost, "/admin/rates", body, "user-1")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestAdminUpsertCardRequiresIDs(t *testing.T) {
	handler := newTestHandler(Deps{Admin: superAdmin()})
	body := []byte(`{"name":"Charizard"}`)
	rr := serveAuthed(t, handler, http.MethodPost, "/admin/cards", body, "admin-1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestAdminUpsertCard(t *testing.T) {
	var upserted models.Card
	handler := newTestHandler(Deps{
		Admin: superAdmin(),
		Cards: stubCardStore{
			upsertFn: func(_ context.Context, _ store.Execer, card models.Card) error {
				upserted = card
				return nil
			},
		},
	})
	body := []byte(`{"id":"card-1","set_id":"set-1","name":"Charizard","rarity":"rare"}`)
	rr := serveAuthed(t, handler, http.MethodPost, "/admin/cards", body, "admin-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if upserted.ID != "card-1" || upserted.SetID != "set-1" {
		t.Fatalf("unexpected card: %#v", upserted)
	}
}

func TestAdminInsertPriceRecordsAndInvalidates(t *testing.T) {
	var inserted models.PricePoint
	var gotCard, gotVariant, invalidated string
	handler := newTestHandler(Deps{
		Admin: superAdmin(),
		PriceWrites: stubPriceWriteStore{
			insertFn: func(_ context.Context, _ store.Execer, cardID, variant string, point models.PricePoint) error {
				gotCard, gotVariant, inserted = cardID, variant, point
				return nil
			},
		},
		Prices: stubPriceService{
			invalidateFn: func(cardID string) { invalidated = cardID },
		},
	})
	body := []byte(`{"variant":"holo","date":"2026-08-30","price_minor":1250}`)
	rr := serveAuthed(t, handler, http.MethodPost, "/admin/cards/card-1/prices", body, "admin-1")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotCard != "card-1" || gotVariant != "holo" || inserted.Price != 1250 {
		t.Fatalf("unexpected insert: %s %s %#v", gotCard, gotVariant, inserted)
	}
	if inserted.Date.Format("2006-01-02") != "2026-08-30" {
		t.Fatalf("unexpected day: %v", inserted.Date)
	}
	if invalidated != "card-1" {
		t.Fatalf("cached series must be dropped, got %q", invalidated)
	}
}

func TestAdminInsertPriceRejectsBadPoint(t *testing.T) {
	handler := newTestHandler(Deps{Admin: superAdmin()})
	for _, body := range []string{
		`{"price_minor":0}`,
		`{"price_minor":100,"variant":"shiny"}`,
		`{"price_minor":100,"date":"30-08-2026"}`,
	} {
		rr := serveAuthed(t, handler, http.MethodPost, "/admin/cards/card-1/prices", []byte(body), "admin-1")
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestReconcileTrade(t *testing.T) {
	handler := newTestHandler(Deps{
		Admin: superAdmin(),
		Movements: stubMovementStore{
			sumByTradeFn: func(_ context.Context, tradeID string) (int64, error) {
				if tradeID != "trade-1" {
					t.Fatalf("unexpected trade: %s", tradeID)
				}
				return 2, nil
			},
		},
	})
	rr := serveAuthed(t, handler, http.MethodGet, "/admin/trades/trade-1/reconcile", nil, "admin-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["balanced"] != false || payload["sum"] != float64(2) {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}
