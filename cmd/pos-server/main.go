package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dadinjaenudin/kiosk-svelte/internal/handler"
	mid "github.com/dadinjaenudin/kiosk-svelte/internal/middleware"
	"github.com/dadinjaenudin/kiosk-svelte/internal/scope"
	"github.com/dadinjaenudin/kiosk-svelte/internal/tenancy"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/config"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/database"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/jwtutil"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/logger"
	"github.com/dadinjaenudin/kiosk-svelte/prometheus"
)

func main() {
	// Load .env file; env vars set by the environment take precedence
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load("pos-server")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting pos-server",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Scope resolver backed by the tenancy lookups
	db := database.GetDB()
	resolver := scope.NewResolver(
		tenancy.NewOutletLookup(db),
		tenancy.NewSessionLookup(db),
		log,
	)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Metrics and health endpoints
	e.GET("/metrics", handler.MetricsHandler)
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)

	// Public kiosk routes: anonymous browsing and checkout, scoped by hints
	kiosk := e.Group("/kiosk", mid.OptionalAuthMiddleware, mid.ScopeMiddleware(resolver))
	kiosk.GET("/products", handler.ListProducts)
	kiosk.GET("/promotions", handler.ActivePromotions)
	kiosk.POST("/cart/preview", handler.PreviewCart)
	kiosk.POST("/checkout", handler.Checkout)

	// Authenticated API routes
	api := e.Group("/api", mid.AuthMiddleware, mid.ScopeMiddleware(resolver))

	api.GET("/tenants", handler.ListTenants)
	api.POST("/tenants", handler.CreateTenant)
	api.GET("/outlets", handler.ListOutlets)
	api.POST("/outlets", handler.CreateOutlet)
	api.POST("/outlets/switch/:id", handler.SwitchOutlet(resolver))

	api.GET("/products", handler.ListProducts)
	api.POST("/products", handler.CreateProduct)
	api.PUT("/products/:id", handler.UpdateProduct)
	api.DELETE("/products/:id", handler.DeleteProduct)

	api.GET("/promotions", handler.ListPromotions)
	api.GET("/promotions/active", handler.ActivePromotions)
	api.GET("/promotions/stats", handler.PromotionStats)
	api.GET("/promotions/:id", handler.GetPromotion)
	api.POST("/promotions", handler.CreatePromotion)
	api.PUT("/promotions/:id", handler.UpdatePromotion)
	api.DELETE("/promotions/:id", handler.DeletePromotion)
	api.PUT("/promotions/:id/products", handler.SetPromotionProducts)
	api.POST("/promotions/:id/activate", handler.ActivatePromotion)
	api.POST("/promotions/:id/deactivate", handler.DeactivatePromotion)
	api.GET("/promotions/:id/preview", handler.PreviewPromotion)

	api.GET("/orders", handler.ListOrders)
	api.GET("/orders/:id", handler.GetOrder)
	api.POST("/cart/preview", handler.PreviewCart)
	api.POST("/checkout", handler.Checkout)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
