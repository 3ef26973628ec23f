package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vtuhub/vtuhub-backend/internal/config"
	"github.com/vtuhub/vtuhub-backend/internal/handlers"
	"github.com/vtuhub/vtuhub-backend/internal/logger"
	"github.com/vtuhub/vtuhub-backend/internal/middleware"
)

// HandlerDependencies groups all handlers for router setup
type HandlerDependencies struct {
	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	PurchaseHandler    *handlers.PurchaseHandler
	TransactionHandler *handlers.TransactionHandler
	InboxHandler       *handlers.InboxHandler
	SMSHandler         *handlers.SMSHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, log *zap.Logger, deps HandlerDependencies) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.RequestLogger(log))

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
		}
	}

	// Protected routes. Every mutating call requires a valid bearer token.
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		users := protected.Group("/users")
		{
			users.GET("/me", deps.UserHandler.GetMe)
			users.GET("/me/wallet", deps.UserHandler.GetWallet)
		}

		protected.POST("/wallet/fund", deps.UserHandler.FundWallet)

		purchases := protected.Group("/purchases")
		{
			purchases.POST("", deps.PurchaseHandler.Execute)
			purchases.POST("/verify", deps.PurchaseHandler.Verify)
		}

		transactions := protected.Group("/transactions")
		{
			transactions.GET("", deps.TransactionHandler.GetTransactions)
			transactions.GET("/count", deps.TransactionHandler.GetTransactionCount)
			transactions.GET("/reference/:reference", deps.TransactionHandler.GetTransactionByReference)
			transactions.GET("/:id", deps.TransactionHandler.GetTransactionByID)
		}

		inbox := protected.Group("/inbox")
		{
			inbox.GET("", deps.InboxHandler.GetMessages)
			inbox.GET("/counts", deps.InboxHandler.GetCounts)
			inbox.GET("/watch", deps.InboxHandler.Watch)
			inbox.PUT("/:id/read", deps.InboxHandler.MarkRead)
		}

		sms := protected.Group("/sms/orders")
		{
			sms.POST("", deps.SMSHandler.CreateOrder)
			sms.GET("", deps.SMSHandler.GetOrders)
			sms.GET("/:orderId", deps.SMSHandler.GetOrder)
			sms.DELETE("/:orderId", deps.SMSHandler.CancelOrder)
		}
	}

	return router
}
