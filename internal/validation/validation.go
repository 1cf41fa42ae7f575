// Package validation wraps go-playground/validator with json field names and
// readable messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Reported fields use json names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// Violation is one failed constraint.
type Violation struct {
	Field string
	Tag   string
	Param string
	Value any
}

func (v Violation) Message() string {
	switch v.Tag {
	case "required", "notblank":
		return v.Field + " is required"
	case "email":
		return fmt.Sprintf("%s must be a valid email address, got %q", v.Field, fmt.Sprint(v.Value))
	case "min":
		if isNumber(v.Value) {
			return fmt.Sprintf("%s must be at least %s, got %v", v.Field, v.Param, v.Value)
		}
		return fmt.Sprintf("%s must contain at least %s item(s)", v.Field, v.Param)
	case "max":
		if isNumber(v.Value) {
			return fmt.Sprintf("%s must be at most %s, got %v", v.Field, v.Param, v.Value)
		}
		return fmt.Sprintf("%s must contain at most %s item(s)", v.Field, v.Param)
	}
	return fmt.Sprintf("%s failed %s validation", v.Field, v.Tag)
}

// Check validates s and returns every violation. The error is non-nil only
// when s cannot be validated at all, e.g. a nil pointer.
func Check(s any) ([]Violation, error) {
	err := Validator().Struct(s)
	if err == nil {
		return nil, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}
	out := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{
			Field: fieldPath(fe.Namespace()),
			Tag:   fe.Tag(),
			Param: fe.Param(),
			Value: indirect(fe.Value()),
		})
	}
	return out, nil
}

func Messages(violations []Violation) []string {
	if len(violations) == 0 {
		return nil
	}
	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = v.Message()
	}
	return out
}

// Details keys each message by field, the shape used for form errors.
func Details(violations []Violation) map[string]string {
	out := make(map[string]string, len(violations))
	for _, v := range violations {
		if _, ok := out[v.Field]; !ok {
			out[v.Field] = v.Message()
		}
	}
	return out
}

// fieldPath drops the root struct name from a namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func isNumber(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
