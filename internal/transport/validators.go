package transport

import (
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	registerOnce sync.Once
)

// slugList accepts an empty string or a comma separated list of [a-zA-Z0-9_] words
func slugList(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if strings.TrimSpace(raw) == "" {
		return true
	}
	for _, item := range strings.Split(raw, ",") {
		if !slugPattern.MatchString(strings.TrimSpace(item)) {
			return false
		}
	}
	return true
}

// registerValidators adds the custom binding rules to gin's validator
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logrus.Warn("Binding engine is not validator/v10, custom rules skipped")
			return
		}
		if err := v.RegisterValidation("slugs", slugList); err != nil {
			logrus.Errorf("Failed to register slugs validator: %v", err)
		}
	})
}
