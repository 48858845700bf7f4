package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var identityKeyRegex = regexp.MustCompile(`^[a-zA-Z0-9]{3,20}$`)

// Identity keys are alphanumeric, 3 to 20 characters.
func validateIdentityKey(fl validator.FieldLevel) bool {
	return identityKeyRegex.MatchString(fl.Field().String())
}

func validateLatitude(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90 && lat <= 90
}

func validateLongitude(fl validator.FieldLevel) bool {
	lon := fl.Field().Float()
	return lon >= -180 && lon <= 180
}

func validateStruct(payload interface{}) *[]error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	errs := []error{}
	if invalid, ok := err.(*validator.InvalidValidationError); ok {
		errs = append(errs, invalid)
		return &errs
	}
	for _, fieldErr := range err.(validator.ValidationErrors) {
		errs = append(errs, fmt.Errorf(`field "%s" failed validation rule "%s"`, fieldErr.Field(), fieldErr.Tag()))
	}
	return &errs
}

func validateField(value any, rules string) error {
	return validate.Var(value, rules)
}
