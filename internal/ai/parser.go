// internal/ai/parser.go
package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PredictionPayload is the schema the model must return for forecast
// enrichment. Decoding validates the whole object before any field is
// applied; a partially valid payload is discarded entirely.
type PredictionPayload struct {
	PredictedDaysLeft   int      `json:"predictedDaysLeft"`
	ConsumptionRate     float64  `json:"consumptionRate"`
	RecommendedPurchase float64  `json:"recommendedPurchase"`
	Insights            []string `json:"insights"`
	Confidence          string   `json:"confidence"`
	Notes               string   `json:"notes"`
}

// ProductGuess is the schema for natural-language product parsing.
type ProductGuess struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Unit          string  `json:"unit"`
	QuantityTotal float64 `json:"quantityTotal"`
}

// ExtractJSON pulls the first balanced JSON object out of arbitrary model
// output (models like to wrap JSON in prose or markdown fences).
func ExtractJSON(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// DecodePrediction parses untrusted model output into a fully validated
// payload. Any structural or semantic mismatch returns an error and the
// caller keeps its deterministic baseline.
func DecodePrediction(raw string) (*PredictionPayload, error) {
	blob, ok := ExtractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var payload PredictionPayload
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		return nil, fmt.Errorf("malformed prediction payload: %w", err)
	}

	if payload.PredictedDaysLeft < 0 {
		return nil, fmt.Errorf("predictedDaysLeft must not be negative")
	}
	if payload.ConsumptionRate < 0 {
		return nil, fmt.Errorf("consumptionRate must not be negative")
	}
	if payload.RecommendedPurchase <= 0 {
		return nil, fmt.Errorf("recommendedPurchase must be positive")
	}
	switch payload.Confidence {
	case "alta", "media", "baja":
	default:
		return nil, fmt.Errorf("unknown confidence %q", payload.Confidence)
	}
	for i, insight := range payload.Insights {
		if strings.TrimSpace(insight) == "" {
			return nil, fmt.Errorf("insight %d is empty", i)
		}
	}
	return &payload, nil
}

// DecodeProductGuess parses the natural-language product form guess. Unknown
// category or unit coerce to the safe defaults instead of failing the parse;
// a missing name is the only fatal condition.
func DecodeProductGuess(raw string) (*ProductGuess, error) {
	blob, ok := ExtractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var guess ProductGuess
	if err := json.Unmarshal([]byte(blob), &guess); err != nil {
		return nil, fmt.Errorf("malformed product guess: %w", err)
	}

	guess.Name = strings.TrimSpace(guess.Name)
	if guess.Name == "" {
		return nil, fmt.Errorf("guess has no product name")
	}
	if guess.QuantityTotal <= 0 {
		guess.QuantityTotal = 1
	}
	return &guess, nil
}
