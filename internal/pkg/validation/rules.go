package validation

import (
	"regexp"
	"strings"

	"github.com/yigit/campus/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// Email validation pattern
	EmailPattern = `(?i)^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Student ID number: letters, digits, '-', '_' and '.', starting with a letter or digit
	IDNoPattern = `^[A-Za-z0-9][A-Za-z0-9._\-]{0,31}$`

	// Name validation min/max length
	NameMinLength = 1
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Email *regexp.Regexp
	IDNo  *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
	IDNo:  regexp.MustCompile(IDNoPattern),
}

// String validation
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && strings.TrimSpace(v.Value) == "" {
		return false
	}

	// Skip other validations for empty optional values
	if !v.Required && v.Value == "" {
		return true
	}

	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}

// ValidateEmail checks an administrator login email
func ValidateEmail(email string) error {
	if !NewStringValidation(email).WithMaxLength(254).WithPattern(CompiledPatterns.Email).Validate() {
		return apperrors.NewValidationError("email", "email must be a valid email address")
	}
	return nil
}

// ValidateIDNo checks a student ID number
func ValidateIDNo(idno string) error {
	if !NewStringValidation(idno).WithPattern(CompiledPatterns.IDNo).Validate() {
		return apperrors.NewValidationError("idno", "idno may only contain letters, digits, '.', '_' and '-' (max 32)")
	}
	return nil
}

// ValidateName checks a required free-text student field
func ValidateName(field, value string) error {
	if !NewStringValidation(value).WithMinLength(NameMinLength).WithMaxLength(NameMaxLength).Validate() {
		return apperrors.NewValidationError(field, field+" is required")
	}
	return nil
}
