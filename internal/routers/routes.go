package routers

import (
	"agrimarket-api-io/api/config"
	auth "agrimarket-api-io/api/internal/auth"
	"agrimarket-api-io/api/internal/container"
	"agrimarket-api-io/api/internal/middleware"
	"agrimarket-api-io/api/pkg/controllers"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// InitRoute creates the Gin router for the marketplace API.
func InitRoute(cfg *config.Config, sc *container.ServiceContainer, client *mongo.Client, rdb *redis.Client) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	controllers.SetRequestTimeout(cfg.RequestTimeout)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Cors(cfg.CORSOrigins))

	router.GET("/ping", controllers.Ping)
	router.GET("/health", controllers.Health(client, rdb))

	limited := router.Group("", middleware.RateLimiter(rdb, cfg.RateLimitWindow, cfg.RateLimit), auth.Auth(cfg.Secret, rdb))
	{
		orderRoutes(limited, sc)
		vendorRoutes(limited, sc)
		adminRoutes(limited, sc)
		notificationRoutes(limited, sc)
	}

	return router
}

// orderRoutes configures checkout and order lifecycle endpoints
func orderRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	oc := sc.GetOrderController()

	orders := api.Group("/api/orders")
	orders.POST("", oc.CreateOrder())
	orders.GET("", oc.GetOrders())
	orders.GET("/:id", oc.GetOrder())
	orders.PUT("/:id/status", oc.UpdateOrderStatus())
	orders.PUT("/:id/payment", oc.UpdatePaymentStatus())
}

// vendorRoutes configures self-service vendor onboarding endpoints
func vendorRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	ac := sc.GetApplicationController()

	vendors := api.Group("/api/vendors")
	vendors.POST("/farmer/applications", ac.SubmitFarmerApplication())
	vendors.POST("/delivery-agent/applications", ac.SubmitDeliveryAgentApplication())
	vendors.GET("/:role/applications", ac.GetMyApplications())
	vendors.PUT("/:role/availability", ac.UpdateAvailability())

	api.GET("/api/applications/:id", ac.GetApplication())
	api.POST("/api/delivery-agents/:id/rating", ac.RateDeliveryAgent())
}

// adminRoutes configures application review endpoints
func adminRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	ac := sc.GetApplicationController()

	admin := api.Group("/admin/applications", middleware.AdminOnly())
	admin.GET("", ac.ListApplications())
	admin.GET("/stats", ac.ApplicationStats())
	admin.GET("/:id", ac.GetApplication())
	admin.PUT("/:id/review", ac.ReviewApplication())
}

// notificationRoutes configures the in-app inbox
func notificationRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	nc := sc.GetNotificationController()

	notification := api.Group("/notification")
	notification.GET("/count", nc.GetUnreadCount())
	notification.GET("", nc.GetNotifications())
	notification.POST("", nc.CreateNotification())
	notification.PATCH("/mark-all-read", nc.MarkAllAsRead())
	notification.PATCH("/:id/read", nc.MarkAsRead())
	notification.DELETE("/:id", nc.DeleteNotification())
}
