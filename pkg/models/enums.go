package models

import (
	"fmt"
)

type UserRole string

const (
	RoleClient        UserRole = "client"
	RoleFarmer        UserRole = "farmer"
	RoleDeliveryAgent UserRole = "delivery_agent"
	RoleAdmin         UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleClient, RoleFarmer, RoleDeliveryAgent, RoleAdmin:
		return true
	default:
		return false
	}
}

// VendorRole is the subset of roles that go through the application workflow.
type VendorRole string

const (
	VendorFarmer        VendorRole = "farmer"
	VendorDeliveryAgent VendorRole = "delivery_agent"
)

func (r VendorRole) IsValid() bool {
	switch r {
	case VendorFarmer, VendorDeliveryAgent:
		return true
	default:
		return false
	}
}

func ParseVendorRole(s string) (VendorRole, error) {
	r := VendorRole(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid vendor role: %q", s)
	}
	return r, nil
}

// UserRole returns the account role granted once an application is approved.
func (r VendorRole) UserRole() UserRole {
	switch r {
	case VendorFarmer:
		return RoleFarmer
	case VendorDeliveryAgent:
		return RoleDeliveryAgent
	default:
		return RoleClient
	}
}

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationApproved    ApplicationStatus = "approved"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationSuspended   ApplicationStatus = "suspended"
)

// AllApplicationStatuses lists every status in workflow order.
var AllApplicationStatuses = []ApplicationStatus{
	ApplicationPending,
	ApplicationUnderReview,
	ApplicationApproved,
	ApplicationRejected,
	ApplicationSuspended,
}

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationPending, ApplicationUnderReview, ApplicationApproved, ApplicationRejected, ApplicationSuspended:
		return true
	default:
		return false
	}
}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid application status: %q", s)
	}
	return st, nil
}

// IsTerminal reports whether a review decision has already been made.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

// IsActive reports whether the application is still waiting on an admin.
func (s ApplicationStatus) IsActive() bool {
	return s == ApplicationPending || s == ApplicationUnderReview
}

// BlocksResubmission reports whether a profile in this status prevents the
// same user from opening another application for the same role.
func (s ApplicationStatus) BlocksResubmission() bool {
	return s != ApplicationRejected
}

type ReviewDecision string

const (
	DecisionApprove     ReviewDecision = "approve"
	DecisionReject      ReviewDecision = "reject"
	DecisionUnderReview ReviewDecision = "under_review"
	DecisionSuspend     ReviewDecision = "suspend"
)

func (d ReviewDecision) IsValid() bool {
	switch d {
	case DecisionApprove, DecisionReject, DecisionUnderReview, DecisionSuspend:
		return true
	default:
		return false
	}
}

// TargetStatus is the status an application moves to under this decision.
func (d ReviewDecision) TargetStatus() ApplicationStatus {
	switch d {
	case DecisionApprove:
		return ApplicationApproved
	case DecisionReject:
		return ApplicationRejected
	case DecisionUnderReview:
		return ApplicationUnderReview
	case DecisionSuspend:
		return ApplicationSuspended
	default:
		return ""
	}
}

// CanTransition reports whether an application may move from one status to another.
func CanTransition(from, to ApplicationStatus) bool {
	switch from {
	case ApplicationPending:
		return to == ApplicationUnderReview || to == ApplicationApproved || to == ApplicationRejected
	case ApplicationUnderReview:
		return to == ApplicationApproved || to == ApplicationRejected
	case ApplicationApproved:
		return to == ApplicationSuspended
	case ApplicationSuspended:
		return to == ApplicationApproved
	default:
		return false
	}
}

type ContactType string

const (
	ContactPhone     ContactType = "phone"
	ContactWhatsapp  ContactType = "whatsapp"
	ContactFacebook  ContactType = "facebook"
	ContactInstagram ContactType = "instagram"
	ContactWebsite   ContactType = "website"
	ContactEmail     ContactType = "email"
)

func (t ContactType) IsValid() bool {
	switch t {
	case ContactPhone, ContactWhatsapp, ContactFacebook, ContactInstagram, ContactWebsite, ContactEmail:
		return true
	default:
		return false
	}
}

// PayoutMethod is how a vendor wants to be paid.
type PayoutMethod string

const (
	PayoutBankTransfer PayoutMethod = "bank_transfer"
	PayoutMobileWallet PayoutMethod = "mobile_wallet"
	PayoutCard         PayoutMethod = "card"
	PayoutCash         PayoutMethod = "cash"
)

func (m PayoutMethod) IsValid() bool {
	switch m {
	case PayoutBankTransfer, PayoutMobileWallet, PayoutCard, PayoutCash:
		return true
	default:
		return false
	}
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	default:
		return false
	}
}

// IsFinal reports whether the order can no longer change status.
func (s OrderStatus) IsFinal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryAssigned  DeliveryStatus = "assigned"
	DeliveryPickedUp  DeliveryStatus = "picked_up"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryPending, DeliveryAssigned, DeliveryPickedUp, DeliveryInTransit, DeliveryDelivered, DeliveryFailed:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}

// OrderPaymentMethod is how a client pays for an order.
type OrderPaymentMethod string

const (
	PayCashOnDelivery OrderPaymentMethod = "cash_on_delivery"
	PayCard           OrderPaymentMethod = "card"
	PayBankTransfer   OrderPaymentMethod = "bank_transfer"
	PayMobileWallet   OrderPaymentMethod = "mobile_wallet"
)

func (m OrderPaymentMethod) IsValid() bool {
	switch m {
	case PayCashOnDelivery, PayCard, PayBankTransfer, PayMobileWallet:
		return true
	default:
		return false
	}
}
