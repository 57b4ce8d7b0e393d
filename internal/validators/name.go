package validators

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var displayNamePattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} .,'&()/-]*$`)

var ErrInvalidDisplayName = errors.New("name must start with a letter or digit and contain only letters, digits, spaces and . , ' & ( ) / -")

// ValidateNameFormat checks a business or farm name shown to other users.
func ValidateNameFormat(name string) error {
	if !displayNamePattern.MatchString(strings.TrimSpace(name)) {
		return ErrInvalidDisplayName
	}
	return nil
}

// DisplayName is registered as the "displayname" validation tag.
func DisplayName(fl validator.FieldLevel) bool {
	return ValidateNameFormat(fl.Field().String()) == nil
}
