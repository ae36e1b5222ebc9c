// internal/handlers/product.go
package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hogarlab/despensa-backend/internal/i18n"
	"github.com/hogarlab/despensa-backend/internal/services"
	"github.com/hogarlab/despensa-backend/internal/utils"
)

type ProductHandler struct {
	productService    *services.ProductService
	predictionService *services.PredictionService
	storageService    *services.StorageService
}

func NewProductHandler(productService *services.ProductService, predictionService *services.PredictionService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService:    productService,
		predictionService: predictionService,
		storageService:    storageService,
	}
}

// GET /products
func (h *ProductHandler) List(c *gin.Context) {
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	products, err := h.productService.List(c.Request.Context(), householdID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), householdID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	product, err := h.productService.Create(c.Request.Context(), householdID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductCreated),
		"product": product,
	})
}

// PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	product, err := h.productService.Update(c.Request.Context(), householdID, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductUpdated),
		"product": product,
	})
}

// DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), householdID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyProductDeleted)})
}

// POST /products/:id/consume
func (h *ProductHandler) Consume(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "amount"), err.Error())
		return
	}

	product, err := h.productService.Consume(c.Request.Context(), householdID, c.Param("id"), req.Amount)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductConsumed),
		"product": product,
	})
}

// POST /products/:id/open
func (h *ProductHandler) Open(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	product, err := h.productService.Open(c.Request.Context(), householdID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductOpened),
		"product": product,
	})
}

// POST /products/:id/restore
func (h *ProductHandler) Restore(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	var req struct {
		ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	}
	// body is optional
	_ = c.ShouldBindJSON(&req)

	product, err := h.productService.Restore(c.Request.Context(), householdID, c.Param("id"), req.ExpirationDate)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductRestored),
		"product": product,
	})
}

// POST /products/parse
func (h *ProductHandler) ParseFromText(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	if _, ok := currentHouseholdID(c); !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "text"), nil)
		return
	}

	guess, parsed := h.predictionService.ParseProductText(c.Request.Context(), req.Text)
	if !parsed {
		// not recognizing a product is an expected outcome, not a failure
		utils.SuccessResponse(c, gin.H{
			"parsed":  false,
			"message": i18n.T(lang, i18n.KeyProductUnparsable),
		})
		return
	}

	utils.SuccessResponse(c, gin.H{
		"parsed":  true,
		"message": i18n.T(lang, i18n.KeyProductParsed),
		"product": guess,
	})
}

// POST /products/upload-photo
func (h *ProductHandler) UploadPhoto(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	if _, ok := currentHouseholdID(c); !ok {
		return
	}

	if h.storageService == nil {
		utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed))
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadProductPhoto(file, header)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileInvalidType), err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFileUploadSuccess),
		"upload":  result,
	})
}

// GET /products/:id/prediction
func (h *ProductHandler) Predict(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	householdID, ok := currentHouseholdID(c)
	if !ok {
		return
	}

	windowMonths, _ := strconv.Atoi(c.DefaultQuery("window_months", "0"))

	prediction, err := h.predictionService.PredictProduct(c.Request.Context(), householdID, c.Param("id"), windowMonths)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyPredictionReady),
		"prediction": prediction,
	})
}

func currentHouseholdID(c *gin.Context) (string, bool) {
	householdID, ok := utils.GetHouseholdIDFromContext(c)
	if !ok {
		utils.ForbiddenResponse(c, "")
		return "", false
	}
	return householdID, true
}
