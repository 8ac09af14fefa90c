package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RBI format: four letter bank code, a zero, six alphanumeric branch code
var ifscPattern = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

// RegisterValidators installs custom binding validators on gin's engine.
// Call once at startup before serving requests.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("ifsc", validateIFSC)
	}
}

func validateIFSC(fl validator.FieldLevel) bool {
	return ifscPattern.MatchString(fl.Field().String())
}
