package handler

import (
	stderrors "errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/parking-aggregator/internal/pkg/errors"
	pkgvalidator "github.com/parking-aggregator/internal/pkg/validator"
)

// parseBody разбирает и валидирует JSON тело. Пустое тело допустимо, если это позволяют правила валидации.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
				"body": err.Error(),
			})
		}
	}

	if err := pkgvalidator.Validate(req); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.ErrValidation.WithDetails(map[string]interface{}{"error": err.Error()})
	}

	details := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Namespace()] = fe.Tag()
	}
	return errors.ErrValidation.WithDetails(details)
}
