package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"tradebinder/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type friendRequestRequest struct {
	Username string `json:"username"`
}

func (h *Handler) RequestFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req friendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	target, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to resolve user")
		return
	}
	targetID := valueToString(target["id"])
	if targetID == userID {
		respondError(w, http.StatusBadRequest, "cannot add yourself")
		return
	}
	requestID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.friends.CreateRequest(r.Context(), tx, requestID, userID, targetID)
	})
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			respondError(w, http.StatusConflict, "request already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create request")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"request_id": requestID})
}

func (h *Handler) AcceptFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	requestID := chi.URLParam(r, "id")
	var affected int64
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		affected, err = h.friends.Accept(r.Context(), tx, requestID, userID)
		return err
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to accept request")
		return
	}
	if affected == 0 {
		respondError(w, http.StatusNotFound, "request not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	friends, err := h.friends.ListFriends(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load friends")
		return
	}
	out := make([]map[string]any, 0, len(friends))
	for _, friend := range friends {
		out = append(out, map[string]any{
			"id":       friend.ID,
			"username": friend.Username,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) ListFriendRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	requests, err := h.friends.ListPendingRequests(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load requests")
		return
	}
	respondJSON(w, http.StatusOK, requests)
}
