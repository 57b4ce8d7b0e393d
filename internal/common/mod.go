package common

import (
	"reflect"
	"strings"
	"time"

	"agrimarket-api-io/api/internal/validators"
	"agrimarket-api-io/api/pkg/models"

	"github.com/go-playground/validator/v10"
)

// Database collections
const (
	UserCollection             = "User"
	ProductCollection          = "Product"
	FarmerCollection           = "Farmer"
	DeliveryAgentCollection    = "DeliveryAgent"
	OrderCollection            = "Order"
	UserNotificationCollection = "UserNotification"
)

const (
	REQUEST_TIMEOUT_SECS     = 30 * time.Second
	MONGO_DUPLICATE_KEY_CODE = 11000

	DEFAULT_PAGE_LIMIT = 10
	MAX_PAGE_LIMIT     = 100
)

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("enum", validateEnum)
	_ = v.RegisterValidation("displayname", validators.DisplayName)
	return v
}

// validateEnum accepts any field whose type implements models.Enum.
func validateEnum(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.CanInterface() {
		if e, ok := field.Interface().(models.Enum); ok {
			return e.IsValid()
		}
	}
	return false
}

// VendorCollection returns the collection backing a vendor role.
func VendorCollection(role models.VendorRole) string {
	switch role {
	case models.VendorDeliveryAgent:
		return DeliveryAgentCollection
	default:
		return FarmerCollection
	}
}
