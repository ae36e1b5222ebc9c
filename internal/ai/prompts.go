// internal/ai/prompts.go
package ai

import (
	"fmt"
	"strings"
)

// PredictionInput carries the deterministic context the model refines.
type PredictionInput struct {
	ProductName         string
	Status              string
	Unit                string
	QuantityCurrent     float64
	QuantityTotal       float64
	DailyRate           float64
	TotalLogs           int
	TotalCycles         int
	AverageCycleDays    float64
	BaselineDaysLeft    int
	BaselineRecommended float64
}

func BuildPredictionPrompt(in PredictionInput) string {
	var b strings.Builder
	b.WriteString("You are a household inventory assistant. Refine the consumption forecast below.\n\n")
	fmt.Fprintf(&b, "Product: %s (unit: %s, status: %s)\n", in.ProductName, in.Unit, in.Status)
	fmt.Fprintf(&b, "Stock: %.2f of %.2f\n", in.QuantityCurrent, in.QuantityTotal)
	fmt.Fprintf(&b, "Observed daily consumption rate: %.3f\n", in.DailyRate)
	fmt.Fprintf(&b, "History: %d log entries, %d completed cycles, average cycle %.1f days\n",
		in.TotalLogs, in.TotalCycles, in.AverageCycleDays)
	fmt.Fprintf(&b, "Deterministic estimate: %d days left, recommended purchase %.1f\n\n",
		in.BaselineDaysLeft, in.BaselineRecommended)
	b.WriteString(`Return ONLY a JSON object with this exact structure:
{
  "predictedDaysLeft": <integer >= 0>,
  "consumptionRate": <number >= 0>,
  "recommendedPurchase": <number > 0>,
  "insights": ["short practical tip in Spanish", ...],
  "confidence": "alta" | "media" | "baja",
  "notes": "one short sentence"
}
Keep insights concrete (usage patterns, waste, timing of the next purchase). No markdown, no prose outside the JSON.`)
	return b.String()
}

func BuildProductParsePrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract a pantry product from the following free-form text. The text may be Spanish or English.\n\n")
	fmt.Fprintf(&b, "Text: %q\n\n", text)
	b.WriteString(`Return ONLY a JSON object:
{
  "name": "<product name>",
  "category": "dairy" | "produce" | "meat" | "bakery" | "pantry" | "frozen" | "beverages" | "cleaning" | "personal_care" | "other",
  "unit": "count" | "weight" | "volume",
  "quantityTotal": <number > 0>
}
Use "other"/"count"/1 when unsure. No markdown, no prose outside the JSON.`)
	return b.String()
}
