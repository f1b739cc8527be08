package handlers

import (
	"net/http"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/middleware"
	"github.com/labstack/echo/v4"
)

// httpError converts repository and domain errors into Echo HTTP errors.
// Unclassified errors become 500 without leaking their text.
func httpError(err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
	}
	return echo.NewHTTPError(apperr.HTTPStatus(kind), apperr.Message(err)).SetInternal(err)
}

// bindAndValidate decodes the request body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func currentUserID(c echo.Context) (string, error) {
	id := middleware.UserIDFromContext(c)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}
