package middleware

import (
	"context"
	"net/http"
)

type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// RequireAdmin gates a route behind admin membership plus an optional
// permission flag such as CanManageCards. Super admins pass every
// permission check.
func RequireAdmin(adminStore AdminStore, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			isAdmin, isSuper, err := adminStore.IsAdmin(r.Context(), userID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "unable to verify admin")
				return
			}
			if !isAdmin {
				writeError(w, http.StatusForbidden, "admin privileges required")
				return
			}
			if isSuper || permission == "" {
				next.ServeHTTP(w, r)
				return
			}
			granted, err := adminStore.HasRole(r.Context(), userID, permission)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "unable to verify permission")
				return
			}
			if !granted {
				writeError(w, http.StatusForbidden, "missing required permission")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
