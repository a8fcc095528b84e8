package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateULID checks a path or query identifier.
func (v *Validator) ValidateULID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(field + " is required")
	}
	if !isValidULID(value) {
		return domain.NewValidationError(field + " is not a valid identifier")
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD value and returns the parsed day.
func (v *Validator) ValidateDate(field, value string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field + " must be a YYYY-MM-DD date")
	}
	return parsed, nil
}

// ValidateSearchQuery checks an admin search query string.
func (v *Validator) ValidateSearchQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return domain.NewValidationError("search query must not be empty")
	}
	if len(query) > 200 {
		return domain.NewValidationError("search query is too long")
	}
	return nil
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, Crockford base32 encoded
	if len(s) != 26 {
		return false
	}
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}
