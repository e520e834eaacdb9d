package service

import (
	"errors"

	"github.com/dom/sticky-notes/internal/domain"
	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notecolor", func(fl validator.FieldLevel) bool {
		return domain.Color(fl.Field().String()).IsValid()
	})
	return v
}

// fieldErrorMapper turns the first failing field into a client-facing error.
type fieldErrorMapper func(fe validator.FieldError) error

// firstFieldError runs struct validation and maps the first failing field,
// in struct declaration order.
func firstFieldError(v *validator.Validate, s any, mapField fieldErrorMapper) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return mapField(verrs[0])
	}
	return err
}

// isEmail applies the same email check used at signup.
func isEmail(v *validator.Validate, s string) bool {
	return v.Var(s, "required,email") == nil
}
