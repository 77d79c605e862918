package users

import (
	"strings"

	"github.com/jrsteele09/go-authkit/autherr"
)

// Registration is the input to the registration endpoint. Validation is
// purely local; the server performs its own checks again.
type Registration struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	GivenName            string `json:"given_name,omitempty"`
	FamilyName           string `json:"family_name,omitempty"`
	Username             string `json:"preferred_username,omitempty"`
}

// Validate checks the registration input before any network call is made.
// Failures are Validation errors.
func (r Registration) Validate() error {
	email := strings.TrimSpace(r.Email)
	if email == "" {
		return autherr.New(autherr.KindValidation, "email is required")
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return autherr.New(autherr.KindValidation, "invalid email format")
	}
	if r.Password == "" {
		return autherr.New(autherr.KindValidation, "password is required")
	}
	if r.PasswordConfirmation == "" {
		return autherr.New(autherr.KindValidation, "password confirmation is required")
	}
	if r.Password != r.PasswordConfirmation {
		return autherr.New(autherr.KindValidation, "passwords do not match")
	}
	return nil
}
