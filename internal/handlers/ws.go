package handlers

import (
	"net/http"

	"tradebinder/internal/auth"
	"tradebinder/internal/websocket"
)

// WSEvents upgrades to a websocket for trade and achievement events. The
// browser websocket API cannot set headers, so the token rides in a query
// param.
func (h *Handler) WSEvents(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
