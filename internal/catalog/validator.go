package catalog

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

// Tag is the struct tag used as `validate:"omitempty,catalog=estado_programa"`.
const Tag = "catalog"

// RegisterValidation installs the catalog membership rule on v.
func RegisterValidation(v *validator.Validate) error {
	if err := v.RegisterValidation(Tag, validateMember); err != nil {
		return fmt.Errorf("register %s validation: %w", Tag, err)
	}
	return nil
}

// NewValidator returns a validator with the catalog rule installed. Field errors report
// JSON names so they can be returned to clients as-is. A zero models.Date counts as
// missing, so `required` rejects dates sent as "" or null.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterCustomTypeFunc(dateValue, models.Date{})
	if err := RegisterValidation(v); err != nil {
		panic(err)
	}
	return v
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func dateValue(field reflect.Value) interface{} {
	d, ok := field.Interface().(models.Date)
	if !ok || d.IsZero() {
		return nil
	}
	return d.Time
}

func validateMember(fl validator.FieldLevel) bool {
	name := Name(fl.Param())
	if _, ok := lists[name]; !ok {
		return false
	}
	return Contains(name, fl.Field().String())
}
