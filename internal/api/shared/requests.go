package shared

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/envelope/internal/apierror"
)

// Global validator instance for reuse
var validate = validator.New()

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := JSON.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	// Check if the object implements the Validate interface
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}

	// Otherwise, use the struct validator
	return validate.Struct(v)
}

// BindJSON decodes and validates the request body. Failures come back as
// APIErrors: a parse error for malformed bodies and a validation error with
// per-field details for rejected values.
func BindJSON(r *http.Request, v interface{}) error {
	if err := DecodeJSON(r, v); err != nil {
		return apierror.ParseError("")
	}
	if err := ValidateRequest(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apierror.Validation(ValidationDetails(verrs))
		}
		return apierror.Validation(map[string][]string{"non_field_errors": {err.Error()}})
	}
	return nil
}

// ValidationDetails groups validator failures by lower-cased field name.
func ValidationDetails(verrs validator.ValidationErrors) map[string][]string {
	details := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		details[field] = append(details[field], describe(fe))
	}
	return details
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min", "gte":
		return "Ensure this value is at least " + fe.Param() + "."
	case "max", "lte":
		return "Ensure this value is at most " + fe.Param() + "."
	case "oneof":
		return "Must be one of: " + fe.Param() + "."
	default:
		return "Failed on the '" + fe.Tag() + "' rule."
	}
}
