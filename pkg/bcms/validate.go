package bcms

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// asValidationError converts ozzo rule violations into the field-keyed
// ValidationError the API maps to 422. Other errors pass through.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for field, ferr := range verrs {
			fields[field] = append(fields[field], ferr.Error())
		}
		return &ValidationError{Fields: fields}
	}
	return err
}

// normalizeEmail lowercases and trims an email for storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
