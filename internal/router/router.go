// internal/router/router.go
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/hogarlab/despensa-backend/internal/ai"
	"github.com/hogarlab/despensa-backend/internal/config"
	"github.com/hogarlab/despensa-backend/internal/handlers"
	"github.com/hogarlab/despensa-backend/internal/middleware"
	"github.com/hogarlab/despensa-backend/internal/services"
	"github.com/hogarlab/despensa-backend/internal/store"
	"github.com/hogarlab/despensa-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	recordStore := store.NewGormStore(db)
	consumptionService := services.NewConsumptionService(recordStore)
	productService := services.NewProductService(recordStore, consumptionService)
	shoppingService := services.NewShoppingListService(recordStore, productService)
	// the shopping list reacts to product transitions, and purchases trigger
	// restores; the cycle is closed here after both sides exist
	productService.SetSyncer(shoppingService)

	completer := buildCompleter(cfg)
	predictionService := services.NewPredictionService(recordStore, consumptionService, completer, services.PredictionConfig{
		Enabled:      cfg.AIEnabled(),
		Model:        cfg.AI.Model,
		Temperature:  float32(cfg.AI.Temperature),
		MaxTokens:    cfg.AI.MaxTokens,
		CallTimeout:  time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		RequestDelay: time.Duration(cfg.AI.RequestDelayMs) * time.Millisecond,
	})

	authService := services.NewAuthService(db, cfg)
	householdService := services.NewHouseholdService(db, authService)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Storage service unavailable, photo uploads disabled")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	householdHandler := handlers.NewHouseholdHandler(householdService)
	productHandler := handlers.NewProductHandler(productService, predictionService, storageService)
	shoppingHandler := handlers.NewShoppingListHandler(shoppingService)
	consumptionHandler := handlers.NewConsumptionHandler(consumptionService)
	predictionHandler := handlers.NewPredictionHandler(
		predictionService,
		cfg.AI.BatchLimit,
		time.Duration(cfg.AI.BatchTimeBudgetMs)*time.Millisecond,
	)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Household routes
		households := v1.Group("/households")
		households.Use(middleware.AuthRequired())
		{
			households.POST("", householdHandler.Create)
			households.POST("/join", householdHandler.Join)
			households.GET("/mine", middleware.HouseholdRequired(), householdHandler.GetMine)
		}

		// Everything below operates on a household's collections
		inventory := v1.Group("")
		inventory.Use(middleware.AuthRequired(), middleware.HouseholdRequired())
		{
			products := inventory.Group("/products")
			{
				products.GET("", productHandler.List)
				products.POST("", productHandler.Create)
				products.POST("/parse", productHandler.ParseFromText)
				products.POST("/upload-photo", middleware.UploadRateLimit(), productHandler.UploadPhoto)
				products.GET("/:id", productHandler.Get)
				products.PUT("/:id", productHandler.Update)
				products.DELETE("/:id", productHandler.Delete)
				products.POST("/:id/consume", productHandler.Consume)
				products.POST("/:id/open", productHandler.Open)
				products.POST("/:id/restore", productHandler.Restore)
				products.GET("/:id/history", consumptionHandler.ProductHistory)
				products.GET("/:id/prediction", productHandler.Predict)
			}

			shopping := inventory.Group("/shopping-list")
			{
				shopping.GET("", shoppingHandler.List)
				shopping.POST("", shoppingHandler.AddManualItem)
				shopping.POST("/reconcile", shoppingHandler.Reconcile)
				shopping.POST("/:id/purchase", shoppingHandler.MarkPurchased)
				shopping.DELETE("/:id", shoppingHandler.Delete)
			}

			inventory.GET("/consumption-log", consumptionHandler.HouseholdLog)

			predictions := inventory.Group("/predictions")
			{
				predictions.POST("/analyze", middleware.AnalysisRateLimit(), predictionHandler.AnalyzeHousehold)
			}
		}
	}

	return r
}

// buildCompleter picks the configured completion provider. A nil completer is
// valid: predictions fall back to the deterministic baseline.
func buildCompleter(cfg *config.Config) ai.Completer {
	if !cfg.AIEnabled() {
		return nil
	}

	switch cfg.AI.Provider {
	case "openai":
		client, err := ai.NewOpenAIClient(cfg.AI.APIKey)
		if err != nil {
			logrus.WithError(err).Warn("OpenAI client unavailable, AI enrichment disabled")
			return nil
		}
		return client
	case "gemini":
		client, err := ai.NewGeminiClient(context.Background(), cfg.AI.APIKey)
		if err != nil {
			logrus.WithError(err).Warn("Gemini client unavailable, AI enrichment disabled")
			return nil
		}
		return client
	}
	return nil
}
