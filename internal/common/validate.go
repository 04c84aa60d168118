package common

import (
	"errors"
	"regexp"
	"sync"

	validator "github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^(0|\+84)\d{9,10}$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the process-wide validator with the custom tags
// registered ("vnphone").
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("vnphone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidateStruct runs struct tag validation and converts failures to a
// VALIDATION_ERROR AppError listing the offending fields.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Internal(err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	appErr := Validation(MsgBadPayload)
	appErr.Err = err
	appErr.Details = map[string]any{"fields": fields}
	return appErr
}
