// Package core holds the cost-record domain model, rate-table validation and
// the currency-conversion arithmetic. Everything here is pure; persistence and
// fetching live in their own packages.
package core

import (
	"fmt"
	"math"
)

// RateTable maps a currency code to its multiplier relative to the USD base:
// 1 USD = RateTable[c] units of currency c.
type RateTable map[Currency]float64

// InvalidRatesError reports the first missing or malformed entry of a rate
// table. A table with any bad entry is rejected in full.
type InvalidRatesError struct {
	Currency Currency
}

func (e *InvalidRatesError) Error() string {
	return fmt.Sprintf("invalid rate for %s", e.Currency)
}

// ConversionError reports a currency for which no rate is available.
type ConversionError struct {
	Currency Currency
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("no exchange rate for %s", e.Currency)
}

// Validate requires an entry for every supported currency, each finite and
// positive. Extra keys are ignored.
func (r RateTable) Validate() error {
	for _, c := range Currencies {
		v, ok := r[c]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return &InvalidRatesError{Currency: c}
		}
	}
	return nil
}

// Convert converts amount between two currencies, routing through the USD
// base implied by the table. Same-currency conversion is the identity and
// needs no table at all. A nil table or a missing code fails with
// ConversionError; there is no silent passthrough of unconverted amounts.
func Convert(amount float64, from, to Currency, rates RateTable) (float64, error) {
	if from == to {
		return amount, nil
	}
	fromRate, ok := rates[from]
	if !ok || fromRate <= 0 {
		return 0, &ConversionError{Currency: from}
	}
	toRate, ok := rates[to]
	if !ok || toRate <= 0 {
		return 0, &ConversionError{Currency: to}
	}
	usd := amount / fromRate
	return usd * toRate, nil
}
