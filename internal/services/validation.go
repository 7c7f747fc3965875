package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=6,max=255"`
	Email    string `json:"email" validate:"required,min=6,max=255,email"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
}

// LoginInput is the payload for Login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,min=6,max=255,email"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
}

// ResetRequestInput is the payload for RequestPasswordReset.
type ResetRequestInput struct {
	Email string `json:"email" validate:"required,min=6,max=255,email"`
}

// UpdatePasswordInput is the payload for UpdatePassword.
type UpdatePasswordInput struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=1024"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput returns a *ValidationError for the first violated field.
// Fields are checked in declaration order.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: fieldMessage(fe)}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fe.Field())
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%q must be a valid email", fe.Field())
	default:
		return fmt.Sprintf("%q is invalid", fe.Field())
	}
}
