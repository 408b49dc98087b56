package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"tradebinder/internal/money"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func valueToString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func valueToMoney(value any) string {
	return money.FormatMinor(money.ValueToInt64(value))
}

// maxPriceMinor resolves an optional decimal max price entered in the user's
// display currency into stored EUR minor units. When no decimal string is
// given the raw minor-unit field passes through untouched.
func (h *Handler) maxPriceMinor(r *http.Request, userID, raw string, fallback *int64) (*int64, error) {
	if raw == "" {
		return fallback, nil
	}
	minor, err := money.ParseMinor(raw)
	if err != nil {
		return nil, err
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	eur, err := h.converter.ConvertBack(r.Context(), minor, valueToString(user["currency"]))
	if err != nil {
		return nil, err
	}
	return &eur, nil
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
