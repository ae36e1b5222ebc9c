// internal/handlers/prediction.go
package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hogarlab/despensa-backend/internal/i18n"
	"github.com/hogarlab/despensa-backend/internal/services"
	"github.com/hogarlab/despensa-backend/internal/utils"
)

type PredictionHandler struct {
	predictionService *services.PredictionService
	batchLimit        int
	batchBudget       time.Duration
}

func NewPredictionHandler(predictionService *services.PredictionService, batchLimit int, batchBudget time.Duration) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
		batchLimit:        batchLimit,
		batchBudget:       batchBudget,
	}
}

// POST /predictions/analyze
func (h *PredictionHandler) AnalyzeHousehold(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	limit := h.batchLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= h.batchLimit {
			limit = parsed
		}
	}

	predictions, err := h.predictionService.AnalyzeHouseholdProducts(c.Request.Context(), householdID, limit, h.batchBudget)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyPredictionReady),
		"predictions": predictions,
	})
}
