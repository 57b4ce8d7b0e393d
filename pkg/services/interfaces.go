package services

import (
	"context"

	"agrimarket-api-io/api/pkg/models"
	"agrimarket-api-io/api/pkg/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller a service call is made on behalf of.
type Actor struct {
	UserID primitive.ObjectID
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// ApplicationService defines the vendor application workflow for farmers and delivery agents
type ApplicationService interface {
	SubmitFarmerApplication(ctx context.Context, userID primitive.ObjectID, req models.FarmerApplicationRequest) (*models.Farmer, error)
	SubmitDeliveryAgentApplication(ctx context.Context, userID primitive.ObjectID, req models.DeliveryAgentApplicationRequest) (*models.DeliveryAgent, error)

	GetMyApplications(ctx context.Context, userID primitive.ObjectID, role models.VendorRole) ([]models.Application, error)
	// GetApplication looks in both vendor collections when role is empty.
	GetApplication(ctx context.Context, actor Actor, id primitive.ObjectID, role models.VendorRole) (*models.Application, error)
	ListApplications(ctx context.Context, filter models.ApplicationFilter, pagination util.PaginationArgs) ([]models.Application, int64, error)
	ApplicationStats(ctx context.Context) (models.ApplicationStats, error)

	ReviewApplication(ctx context.Context, reviewerID, id primitive.ObjectID, role models.VendorRole, req models.ReviewApplicationRequest) (*models.Application, error)

	UpdateAvailability(ctx context.Context, userID primitive.ObjectID, role models.VendorRole, available bool) error
	RateDeliveryAgent(ctx context.Context, raterID, agentID primitive.ObjectID, rating float64) (*models.DeliveryAgent, error)
}

// OrderService defines checkout and order lifecycle operations
type OrderService interface {
	// CreateOrders splits the cart into one order per farmer. A repeated
	// idempotencyKey replays the orders from the first call.
	CreateOrders(ctx context.Context, clientID primitive.ObjectID, req models.CreateOrderRequest, idempotencyKey string) ([]models.Order, bool, error)
	GetOrders(ctx context.Context, actor Actor, filter models.OrderFilter, pagination util.PaginationArgs) ([]models.Order, int64, error)
	GetOrder(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, actor Actor, id primitive.ObjectID, req models.UpdateOrderStatusRequest) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, actor Actor, id primitive.ObjectID, req models.UpdatePaymentStatusRequest) (*models.Order, error)
}

// NotificationService defines the in-app inbox and event fan-out
type NotificationService interface {
	// Emit stores a notification for userID and publishes it for delivery.
	Emit(ctx context.Context, userID primitive.ObjectID, req models.UserNotificationRequest) (*models.UserNotification, error)
	// EmitToRole sends one notification to every user holding role.
	EmitToRole(ctx context.Context, role models.UserRole, req models.UserNotificationRequest) (int, error)

	Count(ctx context.Context, userID primitive.ObjectID) (int64, error)
	List(ctx context.Context, userID primitive.ObjectID, filters models.NotificationFilters, pagination util.PaginationArgs) ([]models.UserNotification, int64, error)
	Create(ctx context.Context, actor Actor, req models.UserNotificationRequest) (*models.UserNotification, error)
	MarkRead(ctx context.Context, userID, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
}
