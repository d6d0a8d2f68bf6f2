package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Payment and contact field patterns used by the checkout form.
var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
	zipCodeRe    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	phoneRe      = regexp.MustCompile(`^[\d\s\-\+\(\)]{10,}$`)
	expiryRe     = regexp.MustCompile(`^(0[1-9]|1[0-2])\/\d{2}$`)
)

func init() {
	// Card numbers may be entered with spaces; strip them before matching.
	must(validate.RegisterValidation("cardnumber", func(fl validator.FieldLevel) bool {
		cleaned := strings.ReplaceAll(fl.Field().String(), " ", "")
		return cardNumberRe.MatchString(cleaned)
	}))
	must(validate.RegisterValidation("cvv", func(fl validator.FieldLevel) bool {
		return cvvRe.MatchString(fl.Field().String())
	}))
	must(validate.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
		return zipCodeRe.MatchString(fl.Field().String())
	}))
	must(validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	}))
	must(validate.RegisterValidation("cardexpiry", func(fl validator.FieldLevel) bool {
		return expiryRe.MatchString(fl.Field().String())
	}))
	// At least 8 characters with one uppercase, one lowercase, and one digit.
	must(validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		pw := fl.Field().String()
		if len(pw) < 8 {
			return false
		}
		var hasUpper, hasLower, hasDigit bool
		for _, r := range pw {
			switch {
			case r >= 'A' && r <= 'Z':
				hasUpper = true
			case r >= 'a' && r <= 'z':
				hasLower = true
			case r >= '0' && r <= '9':
				hasDigit = true
			}
		}
		return hasUpper && hasLower && hasDigit
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validate validates a struct using go-playground/validator tags.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return &ValidationError{Errors: validationErrors}
		}
		return err
	}
	return nil
}

// ValidationError wraps validator.ValidationErrors with a user-friendly message.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, err := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", err.Field(), msgForTag(err)))
	}
	return strings.Join(msgs, "; ")
}

// Fields returns a map of field names to error messages.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, err := range e.Errors {
		fields[err.Field()] = msgForTag(err)
	}
	return fields
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "cardnumber":
		return "must be a 16-digit card number"
	case "cvv":
		return "must be a 3 or 4 digit security code"
	case "zipcode":
		return "must be a valid ZIP code"
	case "phone":
		return "must be a valid phone number"
	case "cardexpiry":
		return "must be in MM/YY format"
	case "password":
		return "must be at least 8 characters with an uppercase letter, a lowercase letter, and a number"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
