package constants

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance. Custom tags cover the console's
// identifier formats and date-only fields.
var Validate = newValidator()

var (
	empnoRe    = regexp.MustCompile(`^E[0-9]+$`)
	batchRe    = regexp.MustCompile(`^DCP-[0-9]+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "empno", func(fl validator.FieldLevel) bool {
		return empnoRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "batchcode", func(fl validator.FieldLevel) bool {
		return batchRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "dateonly", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.DateOnly, fl.Field().String())
		return err == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}
