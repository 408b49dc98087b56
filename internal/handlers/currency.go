package handlers

import (
	"errors"
	"net/http"
	"strings"

	"tradebinder/internal/currency"

	"github.com/shopspring/decimal"
)

func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rates.ListActive(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load rates")
		return
	}
	respondJSON(w, http.StatusOK, rates)
}

// ConvertAmount converts between two supported currencies through the EUR
// pivot. The amount is a decimal string in the source currency.
func (h *Handler) ConvertAmount(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from := strings.ToUpper(query.Get("from"))
	to := strings.ToUpper(query.Get("to"))
	if !currency.IsSupported(from) || !currency.IsSupported(to) {
		respondError(w, http.StatusBadRequest, "unsupported_currency")
		return
	}
	amount, err := decimal.NewFromString(query.Get("amount"))
	if err != nil || amount.IsNegative() {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	fromMinor := amount.Shift(currency.MinorUnits(from)).RoundBank(0).IntPart()
	eurMinor, err := h.converter.ConvertBack(r.Context(), fromMinor, from)
	if err != nil {
		respondConvertError(w, err)
		return
	}
	toMinor, err := h.converter.Convert(r.Context(), eurMinor, to)
	if err != nil {
		respondConvertError(w, err)
		return
	}
	toScale := currency.MinorUnits(to)
	respondJSON(w, http.StatusOK, map[string]string{
		"from":      from,
		"to":        to,
		"amount":    amount.StringFixed(currency.MinorUnits(from)),
		"converted": decimal.New(toMinor, -toScale).StringFixed(toScale),
	})
}

func respondConvertError(w http.ResponseWriter, err error) {
	if errors.Is(err, currency.ErrUnknownCurrency) || errors.Is(err, currency.ErrInvalidRate) {
		respondError(w, http.StatusBadRequest, "rate_not_set")
		return
	}
	respondError(w, http.StatusInternalServerError, "unable to convert")
}
