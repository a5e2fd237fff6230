// Package validator configures go-playground/validator for request DTOs.
// Field errors are reported under the field's JSON name.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &Validator{v: v}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// RegisterStringRule registers tag as a rule that passes when check accepts
// the field's string value. Non-string fields fail.
func (val *Validator) RegisterStringRule(tag string, check func(string) bool) error {
	return val.v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		return ok && check(value)
	})
}

// FieldErrors maps each failing field to the tag it failed, for response details.
// Returns nil when err holds no validation errors.
func FieldErrors(err error) map[string]string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
