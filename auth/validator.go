package auth

import (
	"fmt"
	"nfinite/errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Credentials as sent in a registration message. The default client credentials
// are DEFAULT/DEFAULT, so no complexity rule applies to the password.
type Credentials struct {
	Name string `validate:"required,max=64,excludesall=/:@"`
	Pass string `validate:"required,max=72"`
}

// ValidateCredentials rejects names that would collide with storer names or
// part paths, and empty or oversized fields.
func ValidateCredentials(c Credentials) error {
	if strings.TrimSpace(c.Name) != c.Name {
		return fmt.Errorf("%w: name has surrounding spaces", errors.ErrInvalidCredentials)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidCredentials, err)
	}
	return nil
}
