// Copyright 2025 Cambio Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package currency implements the deterministic conversion engine behind the
// agent's tools: a fixed table of exchange rates relative to a base currency
// and pure functions for conversion, pairwise rates, and listing.
//
// The table is constructed once at process start and never mutated, so it is
// safe for unsynchronized concurrent reads across requests.
package currency

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Code is a 3-letter uppercase currency identifier (ISO 4217 style).
type Code string

// Supported currency codes. The base currency is USD.
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
	CAD Code = "CAD"
	AUD Code = "AUD"
	CHF Code = "CHF"
	CNY Code = "CNY"
	INR Code = "INR"
	MXN Code = "MXN"
	BRL Code = "BRL"
	KRW Code = "KRW"
	SGD Code = "SGD"
	HKD Code = "HKD"
	SEK Code = "SEK"
	NOK Code = "NOK"
	NZD Code = "NZD"
	ZAR Code = "ZAR"
	RUB Code = "RUB"
	AED Code = "AED"
)

// Base is the currency all table values are expressed against.
const Base = USD

var (
	// ErrUnknownCurrency indicates a code outside the supported set.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrInvalidAmount indicates an amount that is negative, NaN, or infinite.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Normalize trims whitespace and upper-cases a raw code string.
// It does not check membership; use Table.Rate for that.
func Normalize(raw string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(raw)))
}

// Table is an immutable mapping from currency code to its value relative to
// the base currency (value 1.0 for the base).
type Table struct {
	rates map[Code]float64
	order []Code
}

// codeOrder fixes the listing order. It matches the order the rates were
// originally published in, so listing answers are stable across calls.
var codeOrder = []Code{
	USD, EUR, GBP, JPY, CAD, AUD, CHF, CNY, INR, MXN,
	BRL, KRW, SGD, HKD, SEK, NOK, NZD, ZAR, RUB, AED,
}

// DefaultRates returns the built-in rate table. Rates are a fixed snapshot
// relative to USD, not a live market feed.
func DefaultRates() *Table {
	return &Table{
		rates: map[Code]float64{
			USD: 1.0,
			EUR: 0.92,
			GBP: 0.79,
			JPY: 149.50,
			CAD: 1.36,
			AUD: 1.53,
			CHF: 0.88,
			CNY: 7.14,
			INR: 83.12,
			MXN: 17.15,
			BRL: 4.97,
			KRW: 1298.50,
			SGD: 1.34,
			HKD: 7.82,
			SEK: 10.42,
			NOK: 10.68,
			NZD: 1.63,
			ZAR: 18.65,
			RUB: 89.50,
			AED: 3.67,
		},
		order: codeOrder,
	}
}

// Rate returns the value of code relative to the base currency.
func (t *Table) Rate(code Code) (float64, error) {
	rate, ok := t.rates[code]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, string(code))
	}
	return rate, nil
}

// PairRate returns the exchange rate from one currency to another,
// converting through the base: rate(to) / rate(from).
func (t *Table) PairRate(from, to Code) (float64, error) {
	fromRate, err := t.Rate(from)
	if err != nil {
		return 0, err
	}
	toRate, err := t.Rate(to)
	if err != nil {
		return 0, err
	}
	return toRate / fromRate, nil
}

// Convert converts amount from one currency to another.
// amount must be a finite non-negative number.
func (t *Table) Convert(amount float64, from, to Code) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	rate, err := t.PairRate(from, to)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}

// Codes returns all supported codes in a stable order.
// The returned slice is a copy; callers may modify it freely.
func (t *Table) Codes() []Code {
	codes := make([]Code, len(t.order))
	copy(codes, t.order)
	return codes
}

// Len returns the number of supported currencies.
func (t *Table) Len() int {
	return len(t.order)
}

// Round6 rounds to 6 decimal places. Used for rates in tool payloads.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Round2 rounds to 2 decimal places. Used for amounts in tool payloads.
func Round2(v float64) float64 {
	return math.Round(v*1e2) / 1e2
}
