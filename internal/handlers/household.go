// internal/handlers/household.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hogarlab/despensa-backend/internal/i18n"
	"github.com/hogarlab/despensa-backend/internal/services"
	"github.com/hogarlab/despensa-backend/internal/utils"
)

type HouseholdHandler struct {
	householdService *services.HouseholdService
}

func NewHouseholdHandler(householdService *services.HouseholdService) *HouseholdHandler {
	return &HouseholdHandler{householdService: householdService}
}

// POST /households
func (h *HouseholdHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	household, auth, err := h.householdService.Create(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyHouseholdCreated),
		"household": household,
		"auth":      auth,
	})
}

// POST /households/join
func (h *HouseholdHandler) Join(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.JoinHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyHouseholdInvalidCode), err.Error())
		return
	}

	household, auth, err := h.householdService.Join(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyHouseholdJoined),
		"household": household,
		"auth":      auth,
	})
}

// GET /households/mine
func (h *HouseholdHandler) GetMine(c *gin.Context) {
	householdIDStr, ok := utils.GetHouseholdIDFromContext(c)
	if !ok {
		utils.ForbiddenResponse(c, "")
		return
	}

	householdID, err := uuid.Parse(householdIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid household ID", nil)
		return
	}

	household, err := h.householdService.Get(householdID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"household": household})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return userID, true
}
