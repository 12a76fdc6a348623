package analytics

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidOptions matches every *ValidationError produced by this package
var ErrInvalidOptions = errors.New("invalid analysis options")

// ValidationError represents a rejected analysis parameter
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// Is lets callers match any validation failure with errors.Is
func (ve ValidationError) Is(target error) bool {
	return target == ErrInvalidOptions
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func optionsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks every option and returns the first problem as a *ValidationError
func (o Options) Validate() error {
	err := optionsValidator().Struct(o)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate options: %w", err)
	}
	fe := fieldErrs[0]
	return &ValidationError{
		Field:   fe.Field(),
		Message: describeTag(fe),
		Value:   fe.Value(),
	}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "required":
		return "is required"
	}
	return "failed " + fe.Tag() + " check"
}

func validateInactivity(days int) error {
	if days < 0 {
		return &ValidationError{
			Field:   "inactivity_days",
			Message: "must be at least 0",
			Value:   days,
		}
	}
	return nil
}

func validateParetoTarget(target float64) error {
	if !(target > 0 && target <= 1) {
		return &ValidationError{
			Field:   "pareto_target",
			Message: "must be greater than 0 and at most 1",
			Value:   target,
		}
	}
	return nil
}
