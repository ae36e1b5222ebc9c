// internal/services/status.go
package services

import (
	"github.com/hogarlab/despensa-backend/internal/models"
)

// ThresholdFloor is the product-wide safety floor for the low-stock ratio.
// Anything below it would fire alerts too late to matter, so the clamp is
// applied everywhere the ratio is set or read, never per call.
const ThresholdFloor = 0.2

func ClampThreshold(ratio float64) float64 {
	if ratio < ThresholdFloor {
		return ThresholdFloor
	}
	if ratio > 1.0 {
		return 1.0
	}
	return ratio
}

// ClassifyStatus derives the stock status from the two quantities and the
// threshold ratio. Rule order matters and is pinned by tests: an empty product
// with a degenerate total is out, not available, because the current<=0 check
// fires first.
func ClassifyStatus(quantityCurrent, quantityTotal, thresholdRatio float64) models.ProductStatus {
	if quantityCurrent <= 0 {
		return models.StatusOut
	}
	if quantityTotal <= 0 {
		// no meaningful denominator, treat as fine rather than divide by zero
		return models.StatusAvailable
	}
	if quantityCurrent <= quantityTotal*ClampThreshold(thresholdRatio) {
		return models.StatusLow
	}
	return models.StatusAvailable
}
