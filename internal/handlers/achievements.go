package handlers

import (
	"net/http"

	"tradebinder/internal/middleware"
)

func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	achievements, err := h.achievements.ListWithStatus(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load achievements")
		return
	}
	respondJSON(w, http.StatusOK, achievements)
}
