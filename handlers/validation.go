package handlers

import (
	"fmt"
	"sync"

	"regwizard/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// bindingTags maps custom binding tags to their validators.
var bindingTags = map[string]validator.Func{
	"wizardfield": isWizardField,
}

// RegisterValidators installs the custom binding tags on gin's validator engine.
// The first result is cached; later calls return the same error.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("binding engine is %T, not *validator.Validate", binding.Validator.Engine())
			return
		}
		registerErr = registerTags(v, bindingTags)
	})
	return registerErr
}

func registerTags(v *validator.Validate, tags map[string]validator.Func) error {
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validator: %w", tag, err)
		}
	}
	return nil
}

// isWizardField accepts the json key of an editable field.
func isWizardField(fl validator.FieldLevel) bool {
	_, ok := models.ParseField(fl.Field().String())
	return ok
}
