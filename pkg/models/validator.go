package models

// Enum is implemented by every closed enumeration in this package. The shared
// validator checks fields tagged `validate:"enum"` through it.
type Enum interface {
	IsValid() bool
}

var (
	_ Enum = UserRole("")
	_ Enum = VendorRole("")
	_ Enum = ApplicationStatus("")
	_ Enum = ReviewDecision("")
	_ Enum = ContactType("")
	_ Enum = PayoutMethod("")
	_ Enum = OrderStatus("")
	_ Enum = DeliveryStatus("")
	_ Enum = PaymentStatus("")
	_ Enum = OrderPaymentMethod("")
	_ Enum = NotificationType("")
	_ Enum = NotificationPriority("")
)
