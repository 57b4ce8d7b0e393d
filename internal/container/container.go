package container

import (
	"agrimarket-api-io/api/config"
	"agrimarket-api-io/api/internal"
	"agrimarket-api-io/api/pkg/controllers"
	"agrimarket-api-io/api/pkg/services"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type ServiceContainer struct {
	Publisher *internal.Publisher

	NotificationService services.NotificationService
	ApplicationService  services.ApplicationService
	OrderService        services.OrderService

	NotificationController *controllers.NotificationController
	ApplicationController  *controllers.ApplicationController
	OrderController        *controllers.OrderController
}

// NewServiceContainer wires services and controllers against one database.
// rdb may be nil; caching, pub/sub and idempotency are then disabled.
func NewServiceContainer(cfg *config.Config, db *mongo.Database, rdb *redis.Client) *ServiceContainer {
	publisher := internal.NewPublisher(rdb)

	notificationService := services.NewNotificationService(db, publisher)
	applicationService := services.NewApplicationService(cfg, db, rdb, publisher, notificationService)
	orderService := services.NewOrderService(cfg, db, rdb, publisher, notificationService)

	return &ServiceContainer{
		Publisher: publisher,

		NotificationService: notificationService,
		ApplicationService:  applicationService,
		OrderService:        orderService,

		NotificationController: controllers.InitNotificationController(notificationService),
		ApplicationController:  controllers.InitApplicationController(applicationService),
		OrderController:        controllers.InitOrderController(orderService),
	}
}

// GetOrderController returns the order controller instance
func (sc *ServiceContainer) GetOrderController() *controllers.OrderController {
	return sc.OrderController
}

// GetApplicationController returns the application controller instance
func (sc *ServiceContainer) GetApplicationController() *controllers.ApplicationController {
	return sc.ApplicationController
}

// GetNotificationController returns the notification controller instance
func (sc *ServiceContainer) GetNotificationController() *controllers.NotificationController {
	return sc.NotificationController
}
