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

// Package currencytool exposes the currency engine as LLM-callable tools:
// convert_currency, get_exchange_rate, and list_supported_currencies.
//
// The tool set is closed. The model can only invoke these three names;
// anything else is rejected at dispatch with an error result the model can
// read and recover from.
package currencytool

import (
	"fmt"

	"github.com/cambiolabs/cambio/pkg/currency"
	"github.com/cambiolabs/cambio/pkg/tool"
	"github.com/cambiolabs/cambio/pkg/tool/functiontool"
)

// Tool names as presented to the model.
const (
	ConvertCurrencyName         = "convert_currency"
	GetExchangeRateName         = "get_exchange_rate"
	ListSupportedCurrenciesName = "list_supported_currencies"
)

// ConvertArgs are the parameters for convert_currency.
type ConvertArgs struct {
	Amount       float64 `json:"amount" jsonschema:"required,description=The amount of money to convert"`
	FromCurrency string  `json:"from_currency" jsonschema:"required,description=The source currency code (e.g. USD and EUR)"`
	ToCurrency   string  `json:"to_currency" jsonschema:"required,description=The target currency code (e.g. EUR and JPY)"`
}

// RateArgs are the parameters for get_exchange_rate.
type RateArgs struct {
	FromCurrency string `json:"from_currency" jsonschema:"required,description=The source currency code"`
	ToCurrency   string `json:"to_currency" jsonschema:"required,description=The target currency code"`
}

// ListArgs are the parameters for list_supported_currencies. The tool takes
// none; schema reflection still needs a named struct type.
type ListArgs struct{}

// NewConvertCurrency builds the convert_currency tool over the given table.
func NewConvertCurrency(table *currency.Table) (tool.CallableTool, error) {
	return functiontool.New(
		functiontool.Config{
			Name:        ConvertCurrencyName,
			Description: "Convert an amount of money from one currency to another using current exchange rates.",
		},
		func(ctx tool.Context, args ConvertArgs) (map[string]any, error) {
			from := currency.Normalize(args.FromCurrency)
			to := currency.Normalize(args.ToCurrency)

			converted, err := table.Convert(args.Amount, from, to)
			if err != nil {
				return nil, err
			}
			rate, err := table.PairRate(from, to)
			if err != nil {
				return nil, err
			}

			return map[string]any{
				"original_amount":  args.Amount,
				"converted_amount": currency.Round2(converted),
				"exchange_rate":    currency.Round6(rate),
				"from_currency":    string(from),
				"to_currency":      string(to),
			}, nil
		},
	)
}

// NewGetExchangeRate builds the get_exchange_rate tool over the given table.
func NewGetExchangeRate(table *currency.Table) (tool.CallableTool, error) {
	return functiontool.New(
		functiontool.Config{
			Name:        GetExchangeRateName,
			Description: "Get the current exchange rate between two currencies.",
		},
		func(ctx tool.Context, args RateArgs) (map[string]any, error) {
			from := currency.Normalize(args.FromCurrency)
			to := currency.Normalize(args.ToCurrency)

			rate, err := table.PairRate(from, to)
			if err != nil {
				return nil, err
			}

			return map[string]any{
				"from_currency": string(from),
				"to_currency":   string(to),
				"exchange_rate": currency.Round6(rate),
			}, nil
		},
	)
}

// NewListSupportedCurrencies builds the list_supported_currencies tool.
func NewListSupportedCurrencies(table *currency.Table) (tool.CallableTool, error) {
	return functiontool.New(
		functiontool.Config{
			Name:        ListSupportedCurrenciesName,
			Description: "List all currency codes supported for conversion and rate lookups.",
		},
		func(ctx tool.Context, args ListArgs) (map[string]any, error) {
			codes := table.Codes()
			supported := make([]string, len(codes))
			for i, c := range codes {
				supported[i] = string(c)
			}

			return map[string]any{
				"supported_currencies": supported,
				"base_currency":        string(currency.Base),
				"total_currencies":     table.Len(),
			}, nil
		},
	)
}

// All builds the complete tool set over the given table.
// The returned order is the order the definitions are advertised in.
func All(table *currency.Table) ([]tool.CallableTool, error) {
	convert, err := NewConvertCurrency(table)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", ConvertCurrencyName, err)
	}
	rate, err := NewGetExchangeRate(table)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", GetExchangeRateName, err)
	}
	list, err := NewListSupportedCurrencies(table)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", ListSupportedCurrenciesName, err)
	}
	return []tool.CallableTool{convert, rate, list}, nil
}
