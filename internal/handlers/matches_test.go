package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"tradebinder/internal/store"
)

func TestMatchesIWantAllFriends(t *testing.T) {
	handler := newTestHandler(Deps{
		Matches: stubMatchStore{
			iWantFn: func(_ context.Context, userID, friendID string) ([]map[string]any, error) {
				if friendID != "" {
					t.Fatalf("friend_id=all must mean no filter, got %q", friendID)
				}
				return []map[string]any{{"card_id": "card-1"}}, nil
			},
		},
	})
	rr := serveAuthed(t, handler, http.MethodGet, "/matches/i-want?friend_id=all", nil, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestMatchesTheyWantSingleFriend(t *testing.T) {
	handler := newTestHandler(Deps{
		Matches: stubMatchStore{
			theyWantFn: func(_ context.Context, userID, friendID string) ([]map[string]any, error) {
				if friendID != "user-2" {
					t.Fatalf("unexpected friend filter: %q", friendID)
				}
				return nil, nil
			},
		},
	})
	rr := serveAuthed(t, handler, http.MethodGet, "/matches/they-want?friend_id=user-2", nil, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestMatchSummary(t *testing.T) {
	handler := newTestHandler(Deps{
		Matches: stubMatchStore{
			summaryFn: func(context.Context, string) ([]store.MatchSummary, error) {
				return []store.MatchSummary{
					{FriendID: "user-2", FriendUsername: "misty", IWantCount: 3, TheyWantCount: 1},
				}, nil
			},
		},
	})
	rr := serveAuthed(t, handler, http.MethodGet, "/matches/summary", nil, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 1 || payload[0]["friend_username"] != "misty" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if payload[0]["i_want_count"] != float64(3) || payload[0]["they_want_count"] != float64(1) {
		t.Fatalf("unexpected counts: %#v", payload[0])
	}
}
