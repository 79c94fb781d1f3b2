package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/sponsorship-backend/internal/validation"
)

// RegisterValidators добавляет в gin правила binding для телефонов.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("binding: неожиданный движок валидации %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("e164", func(fl validator.FieldLevel) bool {
		return validation.IsE164(fl.Field().String())
	})
}
