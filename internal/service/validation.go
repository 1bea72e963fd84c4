package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON names so locations match the request body.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateStruct returns one FieldError per failing field, located under root.
func validateStruct(root string, s any) []errorutil.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []errorutil.FieldError{{Loc: []string{root}, Msg: err.Error()}}
	}

	fields := make([]errorutil.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, errorutil.FieldError{
			Loc: []string{root, fe.Field()},
			Msg: fieldErrorMessage(fe),
		})
	}
	return fields
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return fmt.Sprintf("ensure this value has at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

func enumError(root, field, value string, permitted []string) errorutil.FieldError {
	return errorutil.FieldError{
		Loc: []string{root, field},
		Msg: fmt.Sprintf("value %q is not a valid enumeration member; permitted: %s", value, strings.Join(permitted, ", ")),
	}
}

func enumNames[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
