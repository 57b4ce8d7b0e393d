package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContactInfo struct {
	Type  ContactType `bson:"type" json:"type" validate:"required,enum"`
	Value string      `bson:"value" json:"value" validate:"required,max=256"`
}

// Document is a verification file attached to an application. IsApproved is
// nil until an admin decides on it.
type Document struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	FileType     string             `bson:"file_type" json:"fileType"`
	Size         int64              `bson:"size" json:"size"`
	URL          string             `bson:"url" json:"url"`
	AdminRemarks string             `bson:"admin_remarks,omitempty" json:"adminRemarks,omitempty"`
	IsApproved   *bool              `bson:"is_approved" json:"isApproved"`
	UploadedAt   time.Time          `bson:"uploaded_at" json:"uploadedAt"`
}

type DocumentInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	FileType string `json:"fileType" validate:"required,max=100"`
	Size     int64  `json:"size" validate:"gte=0"`
	URL      string `json:"url" validate:"required,url"`
}

// NewDocument builds a document with a fresh id and an undecided approval state.
func NewDocument(in DocumentInput, now time.Time) Document {
	return Document{
		ID:         primitive.NewObjectID(),
		Name:       in.Name,
		FileType:   in.FileType,
		Size:       in.Size,
		URL:        in.URL,
		UploadedAt: now,
	}
}

// IsPending reports whether no decision has been recorded for the document.
func (d Document) IsPending() bool {
	return d.IsApproved == nil
}

type PayoutAccount struct {
	AccountName   string `bson:"account_name,omitempty" json:"accountName,omitempty"`
	AccountNumber string `bson:"account_number,omitempty" json:"accountNumber,omitempty"`
	BankName      string `bson:"bank_name,omitempty" json:"bankName,omitempty"`
	Provider      string `bson:"provider,omitempty" json:"provider,omitempty"`
	PhoneNumber   string `bson:"phone_number,omitempty" json:"phoneNumber,omitempty"`
	CardBrand     string `bson:"card_brand,omitempty" json:"cardBrand,omitempty"`
	CardLastFour  string `bson:"card_last_four,omitempty" json:"cardLastFour,omitempty"`
}

type PaymentMethod struct {
	Method   PayoutMethod  `bson:"method" json:"method"`
	Account  PayoutAccount `bson:"account" json:"account"`
	IsActive bool          `bson:"is_active" json:"isActive"`
}

// PaymentMethodInput carries raw card data that is validated and then
// reduced to brand and last four digits before storage.
type PaymentMethodInput struct {
	Method        PayoutMethod `json:"method" validate:"required,enum"`
	AccountName   string       `json:"accountName" validate:"max=120"`
	AccountNumber string       `json:"accountNumber" validate:"max=64"`
	BankName      string       `json:"bankName" validate:"max=120"`
	Provider      string       `json:"provider" validate:"max=120"`
	PhoneNumber   string       `json:"phoneNumber" validate:"max=32"`
	CardNumber    string       `json:"cardNumber" validate:"max=19"`
	ExpiryMonth   string       `json:"expiryMonth" validate:"max=2"`
	ExpiryYear    string       `json:"expiryYear" validate:"max=4"`
	IsActive      *bool        `json:"isActive"`
}

type AdminReview struct {
	ReviewedBy        primitive.ObjectID   `bson:"reviewed_by" json:"reviewedBy"`
	ReviewedAt        time.Time            `bson:"reviewed_at" json:"reviewedAt"`
	Decision          ReviewDecision       `bson:"decision" json:"decision"`
	Remarks           string               `bson:"remarks,omitempty" json:"remarks,omitempty"`
	RejectionReason   string               `bson:"rejection_reason,omitempty" json:"rejectionReason,omitempty"`
	ApprovedDocuments []primitive.ObjectID `bson:"approved_documents" json:"approvedDocuments"`
	RejectedDocuments []primitive.ObjectID `bson:"rejected_documents" json:"rejectedDocuments"`
	// Names as they were at review time, in upload order.
	ApprovedDocumentNames []string `bson:"approved_document_names" json:"approvedDocumentNames"`
	RejectedDocumentNames []string `bson:"rejected_document_names" json:"rejectedDocumentNames"`
}

// VendorProfile is the part of an application shared by farmers and delivery agents.
type VendorProfile struct {
	ID                 primitive.ObjectID `bson:"_id" json:"_id"`
	UserID             primitive.ObjectID `bson:"user_id" json:"userId"`
	Role               VendorRole         `bson:"role" json:"role"`
	DisplayName        string             `bson:"display_name" json:"displayName"`
	Address            Address            `bson:"address" json:"address"`
	ContactInfo        []ContactInfo      `bson:"contact_info" json:"contactInfo"`
	Documents          []Document         `bson:"documents" json:"documents"`
	PaymentMethods     []PaymentMethod    `bson:"payment_methods" json:"paymentMethods"`
	Status             ApplicationStatus  `bson:"status" json:"status"`
	AdminReview        *AdminReview       `bson:"admin_review,omitempty" json:"adminReview,omitempty"`
	ApplicationVersion int                `bson:"application_version" json:"applicationVersion"`
	IsAvailable        bool               `bson:"is_available" json:"isAvailable"`
	Rating             float64            `bson:"rating" json:"rating"`
	RatingCount        int64              `bson:"rating_count" json:"ratingCount"`
	SubmittedAt        time.Time          `bson:"submitted_at" json:"submittedAt"`
	ApprovedAt         *time.Time         `bson:"approved_at,omitempty" json:"approvedAt,omitempty"`
	RejectedAt         *time.Time         `bson:"rejected_at,omitempty" json:"rejectedAt,omitempty"`
	SuspendedAt        *time.Time         `bson:"suspended_at,omitempty" json:"suspendedAt,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

// FindDocument returns the index of the document with the given id, or -1.
func (p *VendorProfile) FindDocument(id primitive.ObjectID) int {
	for i := range p.Documents {
		if p.Documents[i].ID == id {
			return i
		}
	}
	return -1
}

type FarmDetails struct {
	FarmName          string   `bson:"farm_name" json:"farmName" validate:"required,min=2,max=120,displayname"`
	Slug              string   `bson:"slug" json:"slug"`
	FarmSize          float64  `bson:"farm_size" json:"farmSize" validate:"gt=0"`
	SizeUnit          string   `bson:"size_unit" json:"sizeUnit" validate:"required,oneof=acres hectares sqm"`
	FarmingType       string   `bson:"farming_type" json:"farmingType" validate:"required,oneof=organic conventional mixed hydroponic"`
	Crops             []string `bson:"crops" json:"crops" validate:"required,min=1,dive,required,max=60"`
	YearsOfExperience int      `bson:"years_of_experience" json:"yearsOfExperience" validate:"gte=0,lte=100"`
	Description       string   `bson:"description,omitempty" json:"description,omitempty" validate:"max=2000"`
}

type Farmer struct {
	VendorProfile `bson:",inline"`
	FarmDetails   FarmDetails `bson:"farm_details" json:"farmDetails"`
}

type VehicleDetails struct {
	VehicleType   string  `bson:"vehicle_type" json:"vehicleType" validate:"required,oneof=bicycle motorcycle car van truck"`
	PlateNumber   string  `bson:"plate_number,omitempty" json:"plateNumber,omitempty" validate:"max=20"`
	LicenseNumber string  `bson:"license_number,omitempty" json:"licenseNumber,omitempty" validate:"max=40"`
	CapacityKg    float64 `bson:"capacity_kg" json:"capacityKg" validate:"gte=0"`
}

type ServiceArea struct {
	Cities   []string `bson:"cities" json:"cities" validate:"required,min=1,dive,required,max=80"`
	RadiusKm float64  `bson:"radius_km" json:"radiusKm" validate:"gte=0,lte=500"`
}

type DeliveryAgent struct {
	VendorProfile       `bson:",inline"`
	VehicleDetails      VehicleDetails `bson:"vehicle_details" json:"vehicleDetails"`
	ServiceArea         ServiceArea    `bson:"service_area" json:"serviceArea"`
	CompletedDeliveries int64          `bson:"completed_deliveries" json:"completedDeliveries"`
}

// Application is the read model used by admin views; it decodes documents
// from either vendor collection.
type Application struct {
	VendorProfile       `bson:",inline"`
	FarmDetails         *FarmDetails    `bson:"farm_details,omitempty" json:"farmDetails,omitempty"`
	VehicleDetails      *VehicleDetails `bson:"vehicle_details,omitempty" json:"vehicleDetails,omitempty"`
	ServiceArea         *ServiceArea    `bson:"service_area,omitempty" json:"serviceArea,omitempty"`
	CompletedDeliveries int64           `bson:"completed_deliveries,omitempty" json:"completedDeliveries,omitempty"`
}

// ApplicationInput is the part of a submission common to both roles.
type ApplicationInput struct {
	DisplayName    string               `json:"displayName" validate:"required,min=2,max=120,displayname"`
	Address        Address              `json:"address" validate:"required"`
	ContactInfo    []ContactInfo        `json:"contactInfo" validate:"required,min=1,dive"`
	Documents      []DocumentInput      `json:"documents" validate:"required,min=1,max=10,dive"`
	PaymentMethods []PaymentMethodInput `json:"paymentMethods" validate:"max=5,dive"`
}

type FarmerApplicationRequest struct {
	ApplicationInput
	FarmDetails FarmDetails `json:"farmDetails" validate:"required"`
}

type DeliveryAgentApplicationRequest struct {
	ApplicationInput
	VehicleDetails VehicleDetails `json:"vehicleDetails" validate:"required"`
	ServiceArea    ServiceArea    `json:"serviceArea" validate:"required"`
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" validate:"required"`
}

type RatingRequest struct {
	Rating float64 `json:"rating" validate:"required,gte=1,lte=5"`
}

// ApplicationFilter narrows the admin application listing.
type ApplicationFilter struct {
	Role   VendorRole
	Status ApplicationStatus
	City   string
	State  string
}

// ApplicationStats counts applications per role and status.
type ApplicationStats struct {
	Total  int64                                      `json:"total"`
	ByRole map[VendorRole]map[ApplicationStatus]int64 `json:"byRole"`
}

// NewApplicationStats returns stats with every role and status zeroed.
func NewApplicationStats() ApplicationStats {
	stats := ApplicationStats{ByRole: map[VendorRole]map[ApplicationStatus]int64{}}
	for _, role := range []VendorRole{VendorFarmer, VendorDeliveryAgent} {
		stats.ByRole[role] = map[ApplicationStatus]int64{}
		for _, st := range AllApplicationStatuses {
			stats.ByRole[role][st] = 0
		}
	}
	return stats
}

// Add records count applications of the given role and status.
func (s *ApplicationStats) Add(role VendorRole, status ApplicationStatus, count int64) {
	if _, ok := s.ByRole[role]; !ok {
		s.ByRole[role] = map[ApplicationStatus]int64{}
	}
	s.ByRole[role][status] += count
	s.Total += count
}
