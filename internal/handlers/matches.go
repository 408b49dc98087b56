package handlers

import (
	"net/http"

	"tradebinder/internal/middleware"
)

func (h *Handler) MatchesIWant(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	matches, err := h.matches.CardsIWantFriendsHave(r.Context(), userID, friendFilter(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load matches")
		return
	}
	respondJSON(w, http.StatusOK, matches)
}

func (h *Handler) MatchesTheyWant(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	matches, err := h.matches.CardsFriendsWantIHave(r.Context(), userID, friendFilter(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load matches")
		return
	}
	respondJSON(w, http.StatusOK, matches)
}

func (h *Handler) MatchSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	summary, err := h.matches.Summary(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load summary")
		return
	}
	out := make([]map[string]any, 0, len(summary))
	for _, row := range summary {
		out = append(out, map[string]any{
			"friend_id":       row.FriendID,
			"friend_username": row.FriendUsername,
			"i_want_count":    row.IWantCount,
			"they_want_count": row.TheyWantCount,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// friendFilter reads the friend_id query param; "all" and empty both mean
// no filter.
func friendFilter(r *http.Request) string {
	friendID := r.URL.Query().Get("friend_id")
	if friendID == "all" {
		return ""
	}
	return friendID
}
