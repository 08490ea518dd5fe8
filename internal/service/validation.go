package service

import (
	"strings"
	"user-api/internal/entity"
)

const (
	msgNameRequired  = "Name is required."
	msgEmailRequired = "Valid email is required."
	msgAgeNegative   = "Age must be a positive number."
)

// ValidateUser checks every field rule and returns all violations.
// An empty result means the user is valid.
func ValidateUser(user entity.User) []string {
	var errs []string

	if strings.TrimSpace(user.Name) == "" {
		errs = append(errs, msgNameRequired)
	}

	// missing and malformed email share one message
	if strings.TrimSpace(user.Email) == "" || !strings.Contains(user.Email, "@") {
		errs = append(errs, msgEmailRequired)
	}

	if user.Age < 0 {
		errs = append(errs, msgAgeNegative)
	}

	return errs
}
