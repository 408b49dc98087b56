// Package currency converts stored EUR minor-unit prices into the user's
// display currency. All rates are quoted against the EUR pivot, so a
// conversion between two non-EUR currencies goes through EUR.
package currency

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const Pivot = "EUR"

var (
	ErrUnknownCurrency = errors.New("no active rate for currency")
	ErrInvalidRate     = errors.New("exchange rate is not a positive number")
)

// Supported is the closed set of display currencies. Rates for anything
// else are rejected at the admin endpoint.
var Supported = []string{"EUR", "USD", "GBP", "CHF", "PLN", "SEK", "NOK", "CZK", "JPY"}

func IsSupported(code string) bool {
	code = strings.ToUpper(code)
	for _, c := range Supported {
		if c == code {
			return true
		}
	}
	return false
}

// zeroDecimalCurrencies have no minor unit; amounts are whole units.
var zeroDecimalCurrencies = map[string]bool{"JPY": true}

// MinorUnits returns the number of minor-unit digits for a currency.
func MinorUnits(code string) int32 {
	if zeroDecimalCurrencies[strings.ToUpper(code)] {
		return 0
	}
	return 2
}

type RateSource interface {
	GetActive(ctx context.Context, baseCurrency, quoteCurrency string) (map[string]any, error)
}

type Converter struct {
	rates RateSource
}

func NewConverter(rates RateSource) *Converter {
	return &Converter{rates: rates}
}

// Convert turns an EUR minor-unit amount into the target currency's minor
// units using the active pivot rate. Rounding is banker's rounding so that
// repeated display conversions do not drift in one direction.
func (c *Converter) Convert(ctx context.Context, amountMinor int64, toCurrency string) (int64, error) {
	toCurrency = strings.ToUpper(toCurrency)
	if toCurrency == Pivot {
		return amountMinor, nil
	}
	rate, err := c.activeRate(ctx, toCurrency)
	if err != nil {
		return 0, err
	}
	amount := decimal.New(amountMinor, -2)
	converted := amount.Mul(rate)
	scale := MinorUnits(toCurrency)
	return converted.Shift(scale).RoundBank(0).IntPart(), nil
}

// ConvertBack turns a display-currency minor amount into EUR minor units,
// used when a user enters a max price in their own currency.
func (c *Converter) ConvertBack(ctx context.Context, amountMinor int64, fromCurrency string) (int64, error) {
	fromCurrency = strings.ToUpper(fromCurrency)
	if fromCurrency == Pivot {
		return amountMinor, nil
	}
	rate, err := c.activeRate(ctx, fromCurrency)
	if err != nil {
		return 0, err
	}
	amount := decimal.New(amountMinor, -MinorUnits(fromCurrency))
	converted := amount.Div(rate)
	return converted.Shift(2).RoundBank(0).IntPart(), nil
}

func (c *Converter) activeRate(ctx context.Context, quoteCurrency string) (decimal.Decimal, error) {
	row, err := c.rates.GetActive(ctx, Pivot, quoteCurrency)
	if err != nil {
		return decimal.Zero, ErrUnknownCurrency
	}
	raw, _ := row["rate"].(string)
	rate, err := decimal.NewFromString(raw)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, ErrInvalidRate
	}
	return rate, nil
}

// ValidateRate checks an admin-submitted rate string before storage.
func ValidateRate(raw string) error {
	rate, err := decimal.NewFromString(raw)
	if err != nil || !rate.IsPositive() {
		return ErrInvalidRate
	}
	return nil
}
