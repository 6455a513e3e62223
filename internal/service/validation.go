package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// maxbytes bounds the encoded length of a string; max counts runes.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	return v
}

// validateStruct runs the validate tags of v and converts failures into a
// *ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		field, msg := fieldMessage(fe)
		ve.Add(field, msg)
	}
	return ve
}

func fieldMessage(fe validator.FieldError) (string, string) {
	field := fe.Field()
	label := strings.ReplaceAll(field, "_", " ")
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return field, fmt.Sprintf("The %s field is required.", label)
	case "email":
		return field, fmt.Sprintf("The %s field must be a valid email address.", label)
	case "max":
		if isString {
			return field, fmt.Sprintf("The %s field must not be greater than %s characters.", label, fe.Param())
		}
		return field, fmt.Sprintf("The %s field must not be greater than %s.", label, fe.Param())
	case "maxbytes":
		return field, fmt.Sprintf("The %s field must not be greater than %s bytes.", label, fe.Param())
	case "lt":
		return field, fmt.Sprintf("The %s field must be less than %s.", label, fe.Param())
	case "min", "gte":
		if isString {
			return field, fmt.Sprintf("The %s field must be at least %s characters.", label, fe.Param())
		}
		return field, fmt.Sprintf("The %s field must be at least %s.", label, fe.Param())
	case "eqfield":
		target := strings.ToLower(fe.Param())
		return target, fmt.Sprintf("The %s field confirmation does not match.", target)
	case "oneof":
		return field, fmt.Sprintf("The selected %s is invalid.", label)
	default:
		return field, fmt.Sprintf("The %s field is invalid.", label)
	}
}
