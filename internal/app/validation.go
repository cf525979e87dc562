package app

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
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags of form and returns field errors, or
// nil when the form is valid.
func validateStruct(form interface{}) ValidationErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{"__all__": err.Error()}
	}

	verrs := ValidationErrors{}
	for _, fe := range fieldErrs {
		if _, seen := verrs[fe.Field()]; seen {
			continue
		}
		verrs[fe.Field()] = fieldMessage(fe)
	}
	return verrs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("ensure this value has at least %s characters", fe.Param())
	case "email":
		return "enter a valid email address"
	default:
		return "enter a valid value"
	}
}
