// internal/handlers/shopping_list.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hogarlab/despensa-backend/internal/i18n"
	"github.com/hogarlab/despensa-backend/internal/services"
	"github.com/hogarlab/despensa-backend/internal/utils"
)

type ShoppingListHandler struct {
	shoppingService *services.ShoppingListService
}

func NewShoppingListHandler(shoppingService *services.ShoppingListService) *ShoppingListHandler {
	return &ShoppingListHandler{shoppingService: shoppingService}
}

// GET /shopping-list
func (h *ShoppingListHandler) List(c *gin.Context) {
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	params := utils.GetListParams(c)
	items, err := h.shoppingService.List(c.Request.Context(), householdID, params.IncludeChecked)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"items": items})
}

// POST /shopping-list
func (h *ShoppingListHandler) AddManualItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	var req services.AddManualItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	item, err := h.shoppingService.AddManualItem(c.Request.Context(), householdID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyShoppingItemAdded),
		"item":    item,
	})
}

// POST /shopping-list/:id/purchase
func (h *ShoppingListHandler) MarkPurchased(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	item, err := h.shoppingService.MarkPurchased(c.Request.Context(), householdID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyShoppingItemPurchased),
		"item":    item,
	})
}

// DELETE /shopping-list/:id
func (h *ShoppingListHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	if err := h.shoppingService.DeleteItem(c.Request.Context(), householdID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyShoppingItemDeleted)})
}

// POST /shopping-list/reconcile
func (h *ShoppingListHandler) Reconcile(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	synced, failed, err := h.shoppingService.SyncAllProductsWithShoppingList(c.Request.Context(), householdID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyShoppingReconciled),
		"synced":  synced,
		"failed":  failed,
	})
}
