package lib

import (
	"catalog_server/structs"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their wire name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return strings.ToLower(f.Name)
	})
	return v
}

var tagMessages = map[string]func(param string) string{
	"required": func(string) string { return "is required" },
	"gt": func(p string) string {
		if p == "0" {
			return "must be greater than zero"
		}
		return "must be greater than " + p
	},
	"gte": func(p string) string { return "must be at least " + p },
	"lte": func(p string) string { return "must be at most " + p },
	"min": func(p string) string {
		// a sent but empty optional field
		if p == "1" {
			return "is required"
		}
		return "must be at least " + p + " characters"
	},
	"max":   func(p string) string { return "must be at most " + p + " characters" },
	"oneof": func(p string) string { return "must be one of: " + p },
	"url":   func(string) string { return "must be a valid URL" },
}

// ValidateStruct runs the validate tags of v and returns a *ValidationError on failure.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := &ValidationError{}
	for _, e := range ve {
		message := "is invalid"
		if format, ok := tagMessages[e.Tag()]; ok {
			message = format(e.Param())
		}
		out.Errors = append(out.Errors, structs.FieldError{Field: e.Field(), Message: message})
	}
	out.Message = out.Errors[0].Field + " " + out.Errors[0].Message
	return out
}
