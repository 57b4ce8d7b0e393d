package services

import (
	"agrimarket-api-io/api/internal/common"
	"agrimarket-api-io/api/pkg/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)

// classifiedError keeps the domain message while matching one of the service
// sentinels under errors.Is.
type classifiedError struct {
	kind  error
	cause error
}

func (e *classifiedError) Error() string { return e.cause.Error() }

func (e *classifiedError) Unwrap() []error { return []error{e.kind, e.cause} }

func classify(kind, cause error) error {
	if cause == nil {
		return nil
	}
	return &classifiedError{kind: kind, cause: cause}
}

// domainError maps model errors to service sentinels. Unknown errors pass
// through and end up as 500s.
func domainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden),
		errors.Is(err, ErrBadRequest), errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, mongo.ErrNoDocuments),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrVendorNotFound):
		return classify(ErrNotFound, err)
	case errors.Is(err, models.ErrNotOrderVendor),
		errors.Is(err, models.ErrNotOrderParty):
		return classify(ErrForbidden, err)
	case errors.Is(err, models.ErrTransitionNotAllowed),
		errors.Is(err, models.ErrOrderFinalized):
		return classify(ErrConflict, err)
	case errors.Is(err, models.ErrRejectionReasonRequired),
		errors.Is(err, models.ErrUnknownDocument),
		errors.Is(err, models.ErrConflictingDocument),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrProductUnlisted),
		errors.Is(err, models.ErrNothingToUpdate),
		errors.Is(err, models.ErrNegativeDeliveryFee):
		return classify(ErrBadRequest, err)
	case isDuplicateKey(err):
		return classify(ErrConflict, err)
	default:
		return err
	}
}

func isDuplicateKey(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(common.MONGO_DUPLICATE_KEY_CODE)
}
