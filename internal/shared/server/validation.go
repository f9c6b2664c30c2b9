package server

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags to gin's validator engine.
// It must run before any request is bound.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("doctype", DocType)
	})
}

// DocType accepts the generated document formats, case-sensitively.
func DocType(fl validator.FieldLevel) bool {
	switch strings.TrimSpace(fl.Field().String()) {
	case "pdf", "docx":
		return true
	default:
		return false
	}
}
