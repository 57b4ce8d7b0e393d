package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	// Application workflow
	NotificationApplicationSubmitted   NotificationType = "application_submitted"
	NotificationApplicationUnderReview NotificationType = "application_under_review"
	NotificationApplicationApproved    NotificationType = "application_approved"
	NotificationApplicationRejected    NotificationType = "application_rejected"
	NotificationApplicationSuspended   NotificationType = "application_suspended"

	// Orders
	NotificationOrderPlaced        NotificationType = "order_placed"
	NotificationOrderReceived      NotificationType = "order_received"
	NotificationOrderStatusUpdated NotificationType = "order_status_updated"
	NotificationOrderDelivered     NotificationType = "order_delivered"
	NotificationOrderCancelled     NotificationType = "order_cancelled"

	// Payments
	NotificationPaymentReceived NotificationType = "payment_received"
	NotificationPaymentFailed   NotificationType = "payment_failed"
	NotificationPaymentRefunded NotificationType = "payment_refunded"

	// System
	NotificationSystemAlert      NotificationType = "system_alert"
	NotificationPromotionalOffer NotificationType = "promotional_offer"
)

// AllNotificationTypes lists the closed set of notification types.
var AllNotificationTypes = []NotificationType{
	NotificationApplicationSubmitted,
	NotificationApplicationUnderReview,
	NotificationApplicationApproved,
	NotificationApplicationRejected,
	NotificationApplicationSuspended,
	NotificationOrderPlaced,
	NotificationOrderReceived,
	NotificationOrderStatusUpdated,
	NotificationOrderDelivered,
	NotificationOrderCancelled,
	NotificationPaymentReceived,
	NotificationPaymentFailed,
	NotificationPaymentRefunded,
	NotificationSystemAlert,
	NotificationPromotionalOffer,
}

func (nt NotificationType) IsValid() bool {
	switch nt {
	case NotificationApplicationSubmitted, NotificationApplicationUnderReview,
		NotificationApplicationApproved, NotificationApplicationRejected, NotificationApplicationSuspended,
		NotificationOrderPlaced, NotificationOrderReceived, NotificationOrderStatusUpdated,
		NotificationOrderDelivered, NotificationOrderCancelled,
		NotificationPaymentReceived, NotificationPaymentFailed, NotificationPaymentRefunded,
		NotificationSystemAlert, NotificationPromotionalOffer:
		return true
	default:
		return false
	}
}

type NotificationCategory string

const (
	CategoryApplication NotificationCategory = "application"
	CategoryOrder       NotificationCategory = "order"
	CategoryPayment     NotificationCategory = "payment"
	CategorySystem      NotificationCategory = "system"
)

// Category groups the type for inbox filtering.
func (nt NotificationType) Category() NotificationCategory {
	switch nt {
	case NotificationApplicationSubmitted, NotificationApplicationUnderReview,
		NotificationApplicationApproved, NotificationApplicationRejected, NotificationApplicationSuspended:
		return CategoryApplication
	case NotificationOrderPlaced, NotificationOrderReceived, NotificationOrderStatusUpdated,
		NotificationOrderDelivered, NotificationOrderCancelled:
		return CategoryOrder
	case NotificationPaymentReceived, NotificationPaymentFailed, NotificationPaymentRefunded:
		return CategoryPayment
	default:
		return CategorySystem
	}
}

// NotificationPriority represents the priority level of a notification
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

func (np NotificationPriority) IsValid() bool {
	switch np {
	case NotificationPriorityLow, NotificationPriorityMedium, NotificationPriorityHigh, NotificationPriorityUrgent:
		return true
	default:
		return false
	}
}

// DefaultPriority is used when a notification is created without one.
func (nt NotificationType) DefaultPriority() NotificationPriority {
	switch nt {
	case NotificationApplicationRejected, NotificationApplicationSuspended, NotificationPaymentFailed:
		return NotificationPriorityHigh
	case NotificationApplicationApproved, NotificationOrderReceived, NotificationPaymentReceived,
		NotificationOrderDelivered, NotificationOrderCancelled, NotificationSystemAlert,
		NotificationApplicationSubmitted, NotificationApplicationUnderReview,
		NotificationOrderPlaced, NotificationOrderStatusUpdated, NotificationPaymentRefunded:
		return NotificationPriorityMedium
	default:
		return NotificationPriorityLow
	}
}

// TargetRole is the role whose inbox the type is meant for. An empty role
// means any user.
func (nt NotificationType) TargetRole() UserRole {
	switch nt {
	case NotificationApplicationSubmitted:
		return RoleAdmin
	case NotificationOrderReceived, NotificationPaymentReceived:
		return RoleFarmer
	case NotificationOrderPlaced, NotificationOrderStatusUpdated, NotificationOrderDelivered,
		NotificationOrderCancelled, NotificationPaymentFailed, NotificationPaymentRefunded:
		return RoleClient
	default:
		return ""
	}
}

// GetExpiryDuration returns the default expiry duration for a notification type.
// Zero means the notification never expires.
func (nt NotificationType) GetExpiryDuration() time.Duration {
	switch nt {
	case NotificationPromotionalOffer:
		return 7 * 24 * time.Hour
	case NotificationSystemAlert:
		return 30 * 24 * time.Hour
	case NotificationOrderPlaced, NotificationOrderReceived, NotificationOrderStatusUpdated,
		NotificationOrderDelivered, NotificationOrderCancelled,
		NotificationPaymentReceived, NotificationPaymentFailed, NotificationPaymentRefunded:
		return 90 * 24 * time.Hour
	case NotificationApplicationApproved, NotificationApplicationRejected, NotificationApplicationSuspended:
		return 0
	default:
		return 30 * 24 * time.Hour
	}
}

// GetPriorityWeight returns a numeric weight for sorting notifications by priority
func (np NotificationPriority) GetPriorityWeight() int {
	switch np {
	case NotificationPriorityUrgent:
		return 4
	case NotificationPriorityHigh:
		return 3
	case NotificationPriorityMedium:
		return 2
	case NotificationPriorityLow:
		return 1
	default:
		return 0
	}
}

// UserNotification represents a notification for a user
type UserNotification struct {
	ID                primitive.ObjectID   `bson:"_id" json:"_id"`
	UserID            primitive.ObjectID   `bson:"user_id" json:"userId"`
	Type              NotificationType     `bson:"type" json:"type"`
	Category          NotificationCategory `bson:"category" json:"category"`
	Title             string               `bson:"title" json:"title"`
	Message           string               `bson:"message" json:"message"`
	Priority          NotificationPriority `bson:"priority" json:"priority"`
	PriorityWeight    int                  `bson:"priority_weight" json:"-"`
	IsRead            bool                 `bson:"is_read" json:"isRead"`
	ReadAt            *time.Time           `bson:"read_at,omitempty" json:"readAt,omitempty"`
	Data              map[string]any       `bson:"data,omitempty" json:"data,omitempty"`
	RelatedEntityID   *primitive.ObjectID  `bson:"related_entity_id,omitempty" json:"relatedEntityId,omitempty"`
	RelatedEntityType string               `bson:"related_entity_type,omitempty" json:"relatedEntityType,omitempty"`
	ActionURL         string               `bson:"action_url,omitempty" json:"actionUrl,omitempty"`
	CreatedAt         time.Time            `bson:"created_at" json:"createdAt"`
	ExpiresAt         *time.Time           `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
}

// UserNotificationRequest represents a request to create a user notification
type UserNotificationRequest struct {
	// UserID targets another user; only admins may set it.
	UserID            *primitive.ObjectID  `json:"userId,omitempty"`
	Type              NotificationType     `json:"type" validate:"required,enum"`
	Title             string               `json:"title" validate:"required,max=200"`
	Message           string               `json:"message" validate:"required,max=2000"`
	Priority          NotificationPriority `json:"priority" validate:"omitempty,enum"`
	Data              map[string]any       `json:"data,omitempty"`
	RelatedEntityID   *primitive.ObjectID  `json:"relatedEntityId,omitempty"`
	RelatedEntityType string               `json:"relatedEntityType,omitempty" validate:"max=60"`
	ActionURL         string               `json:"actionUrl,omitempty" validate:"omitempty,max=500"`
	ExpiresAt         *time.Time           `json:"expiresAt,omitempty"`
}

// NewUserNotification fills category, priority and expiry from the type.
func NewUserNotification(userID primitive.ObjectID, req UserNotificationRequest, now time.Time) UserNotification {
	priority := req.Priority
	if priority == "" {
		priority = req.Type.DefaultPriority()
	}

	expiresAt := req.ExpiresAt
	if expiresAt == nil {
		if d := req.Type.GetExpiryDuration(); d > 0 {
			t := now.Add(d)
			expiresAt = &t
		}
	}

	return UserNotification{
		ID:                primitive.NewObjectID(),
		UserID:            userID,
		Type:              req.Type,
		Category:          req.Type.Category(),
		Title:             req.Title,
		Message:           req.Message,
		Priority:          priority,
		PriorityWeight:    priority.GetPriorityWeight(),
		Data:              req.Data,
		RelatedEntityID:   req.RelatedEntityID,
		RelatedEntityType: req.RelatedEntityType,
		ActionURL:         req.ActionURL,
		CreatedAt:         now,
		ExpiresAt:         expiresAt,
	}
}

// NotificationFilters represents filters for querying notifications
type NotificationFilters struct {
	Types    []NotificationType
	Category NotificationCategory
	Priority NotificationPriority
	IsRead   *bool
}

// OrderStatusNotification picks the type sent to the client after a vendor
// updates an order.
func OrderStatusNotification(o Order) NotificationType {
	switch o.Status {
	case OrderDelivered:
		return NotificationOrderDelivered
	case OrderCancelled:
		return NotificationOrderCancelled
	default:
		return NotificationOrderStatusUpdated
	}
}

// PaymentNotification picks the type and recipient for a payment status
// change. ok is false when no one needs to be told.
func PaymentNotification(o Order) (nt NotificationType, recipient primitive.ObjectID, ok bool) {
	switch o.PaymentStatus {
	case PaymentPaid:
		return NotificationPaymentReceived, o.FarmerID, true
	case PaymentFailed:
		return NotificationPaymentFailed, o.ClientID, true
	case PaymentRefunded:
		return NotificationPaymentRefunded, o.ClientID, true
	default:
		return "", primitive.NilObjectID, false
	}
}
