// internal/handlers/consumption.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hogarlab/despensa-backend/internal/services"
	"github.com/hogarlab/despensa-backend/internal/utils"
)

type ConsumptionHandler struct {
	consumptionService *services.ConsumptionService
}

func NewConsumptionHandler(consumptionService *services.ConsumptionService) *ConsumptionHandler {
	return &ConsumptionHandler{consumptionService: consumptionService}
}

// GET /products/:id/history
func (h *ConsumptionHandler) ProductHistory(c *gin.Context) {
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	params := utils.GetListParams(c)
	stats, err := h.consumptionService.GetHistory(c.Request.Context(), householdID, c.Param("id"), params.WindowMonths)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"history": stats})
}

// GET /consumption-log
func (h *ConsumptionHandler) HouseholdLog(c *gin.Context) {
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	params := utils.GetListParams(c)
	limit := params.Limit
	if limit == 0 {
		limit = 100
	}

	entries, err := h.consumptionService.HouseholdLog(c.Request.Context(), householdID, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"entries": entries})
}
