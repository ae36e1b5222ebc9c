// internal/ai/parser_test.go
package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{
			"bare object",
			`{"a":1}`,
			`{"a":1}`,
			true,
		},
		{
			"prose wrapped",
			`Sure! Here is the result: {"a":1} hope that helps`,
			`{"a":1}`,
			true,
		},
		{
			"markdown fenced",
			"```json\n{\"a\":1}\n```",
			`{"a":1}`,
			true,
		},
		{
			"nested objects",
			`{"a":{"b":{"c":3}},"d":4}`,
			`{"a":{"b":{"c":3}},"d":4}`,
			true,
		},
		{
			"braces inside strings",
			`{"note":"uses { and } freely","a":1}`,
			`{"note":"uses { and } freely","a":1}`,
			true,
		},
		{
			"escaped quote inside string",
			`{"note":"she said \"hola\"","a":1}`,
			`{"note":"she said \"hola\"","a":1}`,
			true,
		},
		{
			"no object at all",
			"lo siento, no puedo ayudar con eso",
			"",
			false,
		},
		{
			"unbalanced object",
			`{"a":1`,
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodePrediction(t *testing.T) {
	raw := `El análisis:
{"predictedDaysLeft":5,"consumptionRate":0.8,"recommendedPurchase":3,"insights":["consumo estable"],"confidence":"media","notes":"sin novedades"}`

	payload, err := DecodePrediction(raw)
	require.NoError(t, err)
	assert.Equal(t, 5, payload.PredictedDaysLeft)
	assert.Equal(t, 0.8, payload.ConsumptionRate)
	assert.Equal(t, 3.0, payload.RecommendedPurchase)
	assert.Equal(t, "media", payload.Confidence)
	assert.Equal(t, []string{"consumo estable"}, payload.Insights)
}

func TestDecodePredictionRejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no JSON", "no structured output here"},
		{"malformed", `{"predictedDaysLeft":"five"}`},
		{"negative days", `{"predictedDaysLeft":-1,"consumptionRate":1,"recommendedPurchase":2,"insights":[],"confidence":"alta","notes":""}`},
		{"negative rate", `{"predictedDaysLeft":1,"consumptionRate":-0.5,"recommendedPurchase":2,"insights":[],"confidence":"alta","notes":""}`},
		{"zero purchase", `{"predictedDaysLeft":1,"consumptionRate":1,"recommendedPurchase":0,"insights":[],"confidence":"alta","notes":""}`},
		{"unknown confidence", `{"predictedDaysLeft":1,"consumptionRate":1,"recommendedPurchase":2,"insights":[],"confidence":"high","notes":""}`},
		{"blank insight", `{"predictedDaysLeft":1,"consumptionRate":1,"recommendedPurchase":2,"insights":["ok","  "],"confidence":"alta","notes":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePrediction(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestDecodeProductGuess(t *testing.T) {
	guess, err := DecodeProductGuess(`{"name":" Leche entera ","category":"dairy","unit":"volume","quantityTotal":2}`)
	require.NoError(t, err)
	assert.Equal(t, "Leche entera", guess.Name)
	assert.Equal(t, 2.0, guess.QuantityTotal)
}

func TestDecodeProductGuessDefaultsQuantity(t *testing.T) {
	guess, err := DecodeProductGuess(`{"name":"Pan","category":"bakery","unit":"count"}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, guess.QuantityTotal)
}

func TestDecodeProductGuessRequiresName(t *testing.T) {
	_, err := DecodeProductGuess(`{"name":"  ","category":"dairy","unit":"volume","quantityTotal":1}`)
	assert.Error(t, err)

	_, err = DecodeProductGuess("nothing to see")
	assert.Error(t, err)
}
