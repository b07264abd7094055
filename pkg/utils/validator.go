package utils

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator so handlers share one instance.
type Validator struct {
	validate *validator.Validate
}

var (
	validatorOnce sync.Once
	validatorInst *Validator
)

// GetValidator returns the process-wide validator.
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		validatorInst = &Validator{validate: validator.New()}
	})
	return validatorInst
}

// Validate checks struct tags on the given value.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
