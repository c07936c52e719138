package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})

	_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return checkmail.ValidateFormat(strings.TrimSpace(fl.Field().String())) == nil
	})

	return v
}

// ValidateStruct validates s and flattens every failure into one message.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var messages []string
	for _, err := range validationErrors {
		field := err.Field()
		param := err.Param()

		switch err.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "min":
			messages = append(messages, field+" must be at least "+param+" characters")
		case "max":
			messages = append(messages, field+" must be at most "+param+" characters")
		case "email", "mailbox":
			messages = append(messages, field+" must be a valid email")
		case "eqfield":
			messages = append(messages, "passwords do not match")
		case "oneof":
			messages = append(messages, field+" must be one of: "+param)
		case "gt":
			messages = append(messages, field+" must be a valid ID")
		default:
			messages = append(messages, field+" is invalid")
		}
	}

	return errors.New(strings.Join(messages, ", "))
}
