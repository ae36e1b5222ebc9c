// internal/models/prediction.go
package models

import "time"

// Prediction is the consumption forecast for one product. The deterministic
// fields are always populated; Source records whether the AI enrichment was
// applied or the baseline survived untouched.
type Prediction struct {
	ProductID                   string        `json:"product_id"`
	ProductName                 string        `json:"product_name"`
	Status                      ProductStatus `json:"status"`
	EstimatedDaysLeft           int           `json:"estimated_days_left"`
	DailyConsumptionRate        float64       `json:"daily_consumption_rate"`
	RecommendedPurchaseQuantity float64       `json:"recommended_purchase_quantity"`
	Confidence                  Confidence    `json:"confidence"`
	Insights                    []string      `json:"insights"`
	Notes                       string        `json:"notes,omitempty"`
	Source                      string        `json:"source"`
	GeneratedAt                 time.Time     `json:"generated_at"`
}

const (
	PredictionSourceDeterministic = "deterministic"
	PredictionSourceAI            = "ai"
)
