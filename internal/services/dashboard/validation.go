package dashboard

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report form field names as the frontend knows them
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateTriggerImportRequest trims and validates an import request.
// It runs before any network call.
func ValidateTriggerImportRequest(req *TriggerImportRequest) error {
	req.APIName = strings.TrimSpace(req.APIName)
	req.APIURL = strings.TrimSpace(req.APIURL)
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	first := fieldErrs[0]
	switch first.Tag() {
	case "required":
		return &ValidationError{first.Field(), "required"}
	case "url":
		return &ValidationError{first.Field(), "must be a valid URL"}
	case "oneof":
		return &ValidationError{first.Field(), fmt.Sprintf("must be one of: %s", first.Param())}
	default:
		return &ValidationError{first.Field(), fmt.Sprintf("failed %q validation", first.Tag())}
	}
}
