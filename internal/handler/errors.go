package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/plant-catalog/internal/repository"
	"github.com/iliyamo/plant-catalog/internal/validation"
)

// msgNotConfigured is the fixed body of every configuration error.
const msgNotConfigured = "Database not configured"

// storageError maps a repository error onto a response.  A missing database
// becomes the fixed configuration error; anything else is logged and hidden
// behind a generic message.
func storageError(c echo.Context, op string, err error) error {
	if errors.Is(err, repository.ErrNotConfigured) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": msgNotConfigured})
	}
	c.Logger().Errorf("%s: %v", op, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "database error"})
}

// validationFailed answers 422 with the field-level details of err.
func validationFailed(c echo.Context, err *validation.Error) error {
	return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": err.Details})
}
