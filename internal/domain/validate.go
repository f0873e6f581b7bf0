package domain

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Use JSON tag names for errors instead of Go struct names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks the `validate` struct tags of v and converts failures into a
// *ValidationError. Strings consisting only of whitespace count as empty.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return blankStrings(v)
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return NewValidationErrors(fields)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "invalid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "expected format " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

// blankStrings reports required string fields that hold only whitespace,
// which the validator accepts as present.
func blankStrings(v any) error {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()

	var errs []FieldError
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Type.Kind() != reflect.String || !strings.Contains(f.Tag.Get("validate"), "required") {
			continue
		}
		if strings.TrimSpace(rv.Field(i).String()) == "" {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			errs = append(errs, FieldError{Field: name, Message: "required"})
		}
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}
