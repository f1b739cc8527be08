// Package validators wires go-playground/validator into Echo and registers
// the custom tags used by request and draft structs.
package validators

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// Validator implements echo.Validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a validator with the "username" and "notblank" tags registered.
func NewValidator() *Validator {
	return &Validator{validate: New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

var customTags = map[string]validator.Func{
	"username": func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	},
	"notblank": func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	},
}

// New builds a bare *validator.Validate with the custom tags, for callers
// outside Echo. It panics if a tag cannot be registered.
func New() *validator.Validate {
	v := validator.New()
	for tag, fn := range customTags {
		mustRegister(v, tag, fn)
	}
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validators: register %q: %v", tag, err))
	}
}
