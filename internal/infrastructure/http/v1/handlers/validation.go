package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"brewpos/internal/domain/catalog"
)

// RegisterValidators adds the custom binding rules to gin's validator:
//
//	size: blank or a recognised size label (S, Small, M, Medium, L, Large, ...)
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("size", validateSize)
}

func validateSize(fl validator.FieldLevel) bool {
	return catalog.IsValidSizeLabel(fl.Field().String())
}
