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

package currency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, USD, Normalize("usd"))
	assert.Equal(t, EUR, Normalize("  eur "))
	assert.Equal(t, GBP, Normalize("GBP"))
	assert.Equal(t, Code("XYZ"), Normalize("xyz"))
}

func TestRate(t *testing.T) {
	table := DefaultRates()

	rate, err := table.Rate(USD)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)

	rate, err = table.Rate(JPY)
	require.NoError(t, err)
	assert.Equal(t, 149.50, rate)

	_, err = table.Rate("XYZ")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestPairRateIdentity(t *testing.T) {
	table := DefaultRates()
	for _, code := range table.Codes() {
		rate, err := table.PairRate(code, code)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, rate, 1e-12, "self-rate for %s", code)
	}
}

func TestPairRateThroughBase(t *testing.T) {
	table := DefaultRates()

	rate, err := table.PairRate(USD, EUR)
	require.NoError(t, err)
	assert.InDelta(t, 0.92, rate, 1e-12)

	rate, err = table.PairRate(EUR, USD)
	require.NoError(t, err)
	assert.InDelta(t, 1/0.92, rate, 1e-12)

	rate, err = table.PairRate(GBP, JPY)
	require.NoError(t, err)
	assert.InDelta(t, 149.50/0.79, rate, 1e-9)
}

func TestPairRateUnknown(t *testing.T) {
	table := DefaultRates()

	_, err := table.PairRate("XXX", USD)
	assert.ErrorIs(t, err, ErrUnknownCurrency)

	_, err = table.PairRate(USD, "XXX")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestConvert(t *testing.T) {
	table := DefaultRates()

	out, err := table.Convert(100, USD, EUR)
	require.NoError(t, err)
	assert.InDelta(t, 92.0, out, 1e-9)

	out, err = table.Convert(0, USD, JPY)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out)
}

func TestConvertRoundTrip(t *testing.T) {
	table := DefaultRates()
	there, err := table.Convert(1000, INR, GBP)
	require.NoError(t, err)
	back, err := table.Convert(there, GBP, INR)
	require.NoError(t, err)
	assert.InDelta(t, 1000, back, 1e-6)
}

func TestConvertInvalidAmount(t *testing.T) {
	table := DefaultRates()

	for _, amount := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := table.Convert(amount, USD, EUR)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amount)
	}
}

func TestCodesStableOrder(t *testing.T) {
	table := DefaultRates()

	first := table.Codes()
	second := table.Codes()
	assert.Equal(t, first, second)
	assert.Len(t, first, 20)
	assert.Equal(t, USD, first[0])
	assert.Equal(t, AED, first[len(first)-1])
	assert.Equal(t, 20, table.Len())

	// mutating the returned slice must not affect the table
	first[0] = "XXX"
	assert.Equal(t, USD, table.Codes()[0])
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 0.920001, Round6(0.9200005001))
	assert.Equal(t, 92.0, Round2(91.999))
	assert.Equal(t, 1.086957, Round6(1/0.92))
}
