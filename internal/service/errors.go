package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
)

// validationError converts validator output into a VALIDATION_ERROR carrying one
// entry per failing field, keyed by the field's JSON name.
func validationError(err error, message string) error {
	appErr := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErr
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		tag := fe.Tag()
		if fe.Param() != "" {
			tag += "=" + fe.Param()
		}
		details[fe.Field()] = tag
	}
	return appErrors.WithDetails(appErr, details)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
