package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/werta666/jifen-go/config"
	"github.com/werta666/jifen-go/controllers"
	"github.com/werta666/jifen-go/middleware"
	"github.com/werta666/jifen-go/services"
	"github.com/werta666/jifen-go/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(svc *services.Service) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	signController := controllers.NewSignInController(svc)
	boardController := controllers.NewBoardController(svc)
	adminController := controllers.NewAdminController(svc)
	shopController := controllers.NewShopController(svc)
	betsController := controllers.NewBetsController(svc)

	api := r.Group("/api/v1")

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/signin/summary", signController.Summary)
	protected.GET("/signin/records", signController.Records)
	protected.POST("/signin/daily", signController.DailySignIn)
	protected.POST("/signin/makeup", signController.Makeup)
	protected.POST("/signin/makeup-card", signController.BuyMakeupCard)

	protected.GET("/board", boardController.GetBoard)
	protected.GET("/points/balance", adminController.Balance)

	protected.GET("/shop/products", shopController.Products)
	protected.POST("/shop/purchase", shopController.Purchase)
	protected.GET("/shop/orders", shopController.Orders)

	protected.GET("/bets/events", betsController.Events)
	protected.POST("/bets/vote", betsController.Vote)

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminRequired())
	admin.POST("/points/adjust", adminController.AdjustPoints)
	admin.POST("/signin/reset-today", adminController.ResetToday)
	admin.POST("/board/refresh", boardController.ForceRefresh)
	admin.GET("/shop/orders", shopController.AdminOrders)
	admin.PUT("/shop/orders/:id/status", shopController.UpdateOrderStatus)
	admin.DELETE("/shop/orders/:id", shopController.DeleteOrder)
	admin.POST("/shop/products", shopController.AddProduct)
	admin.PUT("/shop/products/:id", shopController.UpdateProduct)
	admin.DELETE("/shop/products/:id", shopController.DeleteProduct)
	admin.POST("/shop/products/sample", shopController.CreateSample)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
