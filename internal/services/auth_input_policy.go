package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	mustRegister(validate, "username", func(level validator.FieldLevel) bool {
		return usernamePattern.MatchString(level.Field().String())
	})
	mustRegister(validate, "phone", func(level validator.FieldLevel) bool {
		return phonePattern.MatchString(level.Field().String())
	})
	return validate
}

func mustRegister(validate *validator.Validate, tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// validateInput runs the struct tags of input and turns the first failing
// field into a ValidationError.
func validateInput(input any) error {
	err := inputValidator.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}
	return &ValidationError{Message: describeFieldError(fieldErrors[0])}
}

func describeFieldError(fieldError validator.FieldError) string {
	field := fieldError.Field()
	switch fieldError.Tag() {
	case "required":
		return field + " is required"
	case "username":
		return "Username must be 3-20 characters (letters, numbers, underscore only)"
	case "phone":
		return "Invalid phone number format"
	case "max":
		return field + " must be at most " + fieldError.Param() + " characters"
	case "min":
		return field + " must be at least " + fieldError.Param() + " characters"
	case "oneof":
		return field + " must be one of: " + fieldError.Param()
	default:
		return field + " is invalid"
	}
}

func NormalizeUsername(raw string) string {
	return strings.TrimSpace(raw)
}

func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return invalidInput("Username must be 3-20 characters (letters, numbers, underscore only)")
	}
	return nil
}

func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return invalidInput("Invalid phone number format")
	}
	return nil
}
