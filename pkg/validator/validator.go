package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var nonDigits = regexp.MustCompile(`\D`)

// Digits strips every non-digit character from s.
func Digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// ValidPhone accepts 10 digit local numbers and 12 digit numbers carrying a
// country code (e.g. +91XXXXXXXXXX), whatever separators were typed.
func ValidPhone(s string) bool {
	n := len(Digits(s))
	return n == 10 || n == 12
}

// Validator wraps a go-playground validator configured with the project's
// custom tags and JSON field naming.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return &Validator{v: v}
}

// Check validates s and returns field name to message for every failure, or
// nil when s is valid.
func (v *Validator) Check(s interface{}) map[string]string {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, seen := fields[e.Field()]; seen {
			continue
		}
		fields[e.Field()] = message(e)
	}
	return fields
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "phone":
		return "Enter a valid phone number."
	case "oneof":
		return "Select a valid choice."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", e.Param())
	default:
		return fmt.Sprintf("Failed on the %q rule.", e.Tag())
	}
}
