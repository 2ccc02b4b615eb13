package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pharmaops/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// SetupValidator makes validation errors name fields by their json or form
// tag and lets numeric tags such as gte=0 apply to decimal amounts
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// decimalValue exposes a decimal to the numeric comparison tags
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError answers a failed bind. Tag violations list their
// fields; anything else (malformed JSON, a bad time or uuid) is a plain
// bad request.
func HandleValidationError(c *gin.Context, err error) {
	requestID := GetRequestID(c)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
		return
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Invalid request: "+err.Error(), requestID))
}

// validationMessages maps a tag onto its message. %s is the tag parameter.
var validationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"uuid":     "Invalid UUID format",
	"oneof":    "Must be one of: %s",
	"gte":      "Must be greater than or equal to %s",
	"gt":       "Must be greater than %s",
	"lte":      "Must be less than or equal to %s",
	"min":      "Must be at least %s",
	"max":      "Must be at most %s",
	"dive":     "Invalid item",
}

// getValidationMessage returns a human-readable validation message. Length
// bounds on strings count characters.
func getValidationMessage(e validator.FieldError) string {
	tmpl, ok := validationMessages[e.Tag()]
	if !ok {
		return "Invalid value"
	}
	if !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	msg := fmt.Sprintf(tmpl, e.Param())
	if (e.Tag() == "min" || e.Tag() == "max") && e.Kind() == reflect.String {
		msg += " characters"
	}
	return msg
}
