package cijene

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Search radius bounds accepted by the store and price endpoints, in meters.
const (
	MinRadius = 500
	MaxRadius = 50000
)

var (
	eanPattern  = regexp.MustCompile(`^\d{8,14}$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ean", func(fl validator.FieldLevel) bool {
		return ValidEAN(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return ValidDate(fl.Field().String())
	})
	return v
}

// ValidEAN reports whether s is an 8 to 14 digit barcode.
func ValidEAN(s string) bool {
	return eanPattern.MatchString(s)
}

// ValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return ValidationError(fieldMessage(fieldErrs[0]))
	}
	return ValidationError(err.Error())
}

func validateRequired(value, field string) error {
	if err := validate.Var(value, "required"); err != nil {
		return ValidationError(fmt.Sprintf("Field '%s' is required", field))
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "ean":
		return "Invalid EAN format. Must be 8-14 digits."
	case "isodate":
		return "Date must be in YYYY-MM-DD format"
	case "latitude":
		return "Latitude must be between -90 and 90"
	case "longitude":
		return "Longitude must be between -180 and 180"
	case "required":
		return fmt.Sprintf("Field '%s' is required", strings.ToLower(fe.Field()))
	}

	switch fe.Field() {
	case "EANs":
		return "Field 'eans' is required"
	case "Page":
		return "Page number must be greater than 0"
	case "PerPage":
		return fmt.Sprintf("Per page must be between 1 and %d", MaxPerPage)
	case "Radius":
		return fmt.Sprintf("Radius must be between %d and %d meters", MinRadius, MaxRadius)
	case "Limit":
		return "Field 'limit' must be a positive number"
	case "Code":
		return "Chain code must be between 2 and 10 characters"
	}
	return fmt.Sprintf("Field '%s' failed the '%s' check", fe.Field(), fe.Tag())
}
