package handlers

import (
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerValidators adds the custom binding validations used by the request
// DTOs. "accountcode" enforces the fixed-length numeric catalog code format
// before a request ever reaches a service.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("accountcode", func(fl validator.FieldLevel) bool {
			return domain.ValidAccountCode(fl.Field().String())
		})
	}
}
