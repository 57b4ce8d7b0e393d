package services

import (
	"strings"

	"agrimarket-api-io/api/pkg/models"

	creditcard "github.com/durango/go-credit-card"
	"github.com/pkg/errors"
)

// NormalizePaymentMethods checks the account fields each payout method needs
// and reduces card details to brand and last four digits.
func NormalizePaymentMethods(inputs []models.PaymentMethodInput) ([]models.PaymentMethod, error) {
	methods := make([]models.PaymentMethod, 0, len(inputs))
	for i, in := range inputs {
		pm, err := normalizePaymentMethod(in)
		if err != nil {
			return nil, classify(ErrBadRequest, errors.Wrapf(err, "paymentMethods[%d]", i))
		}
		methods = append(methods, pm)
	}
	return methods, nil
}

func normalizePaymentMethod(in models.PaymentMethodInput) (models.PaymentMethod, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	pm := models.PaymentMethod{Method: in.Method, IsActive: active}

	switch in.Method {
	case models.PayoutBankTransfer:
		if blank(in.AccountName, in.AccountNumber, in.BankName) {
			return pm, errors.New("bank transfer needs accountName, accountNumber and bankName")
		}
		pm.Account = models.PayoutAccount{
			AccountName:   strings.TrimSpace(in.AccountName),
			AccountNumber: strings.TrimSpace(in.AccountNumber),
			BankName:      strings.TrimSpace(in.BankName),
		}
	case models.PayoutMobileWallet:
		if blank(in.Provider, in.PhoneNumber) {
			return pm, errors.New("mobile wallet needs provider and phoneNumber")
		}
		pm.Account = models.PayoutAccount{
			AccountName: strings.TrimSpace(in.AccountName),
			Provider:    strings.TrimSpace(in.Provider),
			PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		}
	case models.PayoutCard:
		card := creditcard.Card{
			Number: strings.ReplaceAll(strings.TrimSpace(in.CardNumber), " ", ""),
			Month:  in.ExpiryMonth,
			Year:   in.ExpiryYear,
		}
		if !card.ValidateNumber() {
			return pm, errors.New("invalid card number")
		}
		if err := card.ValidateExpiration(); err != nil {
			return pm, err
		}
		if err := card.Method(); err != nil {
			return pm, err
		}
		lastFour, err := card.LastFour()
		if err != nil {
			return pm, err
		}
		pm.Account = models.PayoutAccount{
			AccountName:  strings.TrimSpace(in.AccountName),
			CardBrand:    card.Company.Short,
			CardLastFour: lastFour,
		}
	case models.PayoutCash:
	default:
		return pm, errors.Errorf("unsupported payout method %q", in.Method)
	}

	return pm, nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
