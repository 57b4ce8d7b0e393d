package common

import (
	"testing"

	"agrimarket-api-io/api/pkg/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEnumTag(t *testing.T) {
	ok := models.UpdatePaymentStatusRequest{PaymentStatus: models.PaymentPaid}
	assert.NoError(t, Validate.Struct(ok))

	bad := models.UpdatePaymentStatusRequest{PaymentStatus: "partial"}
	err := Validate.Struct(bad)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "paymentStatus", verrs[0].Field())
	assert.Equal(t, "enum", verrs[0].Tag())
}

func TestValidateOptionalEnum(t *testing.T) {
	assert.NoError(t, Validate.Struct(models.UpdateOrderStatusRequest{}))
	assert.Error(t, Validate.Struct(models.UpdateOrderStatusRequest{DeliveryStatus: "lost"}))
}

func TestValidateNestedApplication(t *testing.T) {
	req := models.FarmerApplicationRequest{
		ApplicationInput: models.ApplicationInput{
			DisplayName: "Green Acres",
			Address:     models.Address{Street: "1 Farm Rd", City: "Kumasi", State: "Ashanti", Country: "GH"},
			ContactInfo: []models.ContactInfo{{Type: models.ContactWhatsapp, Value: "+233200000000"}},
			Documents:   []models.DocumentInput{{Name: "id", FileType: "application/pdf", URL: "https://files.example/id.pdf"}},
		},
		FarmDetails: models.FarmDetails{
			FarmName:    "Green Acres",
			FarmSize:    12,
			SizeUnit:    "acres",
			FarmingType: "organic",
			Crops:       []string{"cocoa"},
		},
	}
	assert.NoError(t, Validate.Struct(req))

	req.ContactInfo[0].Type = "telegram"
	assert.Error(t, Validate.Struct(req))
}

func TestValidateDisplayNameTag(t *testing.T) {
	details := models.FarmDetails{FarmName: "<b>Acres</b>", FarmSize: 1, SizeUnit: "acres", FarmingType: "organic", Crops: []string{"okra"}}
	assert.Error(t, Validate.Struct(details))

	details.FarmName = "Ama's Acres"
	assert.NoError(t, Validate.Struct(details))
}

func TestVendorCollection(t *testing.T) {
	assert.Equal(t, FarmerCollection, VendorCollection(models.VendorFarmer))
	assert.Equal(t, DeliveryAgentCollection, VendorCollection(models.VendorDeliveryAgent))
}
