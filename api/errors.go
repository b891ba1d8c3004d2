package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"blocks-api/api/schemas"
	"blocks-api/types/config"
)

const SERVER_ERROR_DETAIL = "A server error occurred."

// ErrorResponse renders err as a status code and a JSON body. Details of
// server faults are never exposed.
func ErrorResponse(err error, method string) (int, interface{}) {
	var (
		validationError *schemas.ValidationError
		parseError      *schemas.ParseError
		httpError       *echo.HTTPError
	)

	switch {
	case errors.As(err, &validationError):
		return http.StatusBadRequest, validationError.Errors
	case errors.As(err, &parseError):
		return http.StatusBadRequest, map[string]string{"detail": parseError.Error()}
	case errors.As(err, &httpError):
		detail := fmt.Sprint(httpError.Message)
		switch {
		case httpError.Code == http.StatusNotFound:
			detail = "Not found."
		case httpError.Code == http.StatusMethodNotAllowed:
			detail = fmt.Sprintf("Method %q not allowed.", method)
		case httpError.Code >= http.StatusInternalServerError:
			detail = SERVER_ERROR_DETAIL
		}
		return httpError.Code, map[string]string{"detail": detail}
	}

	return http.StatusInternalServerError, map[string]string{"detail": SERVER_ERROR_DETAIL}
}

// HTTPErrorHandler is the echo error handler of the server.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := ErrorResponse(err, c.Request().Method)
	if status >= http.StatusInternalServerError {
		config.GetLogger().Errorf(
			"%s %s failed: %v",
			c.Request().Method,
			c.Request().URL.Path,
			err,
		)
	}

	var responseErr error
	if c.Request().Method == http.MethodHead {
		responseErr = c.NoContent(status)
	} else {
		responseErr = c.JSON(status, body)
	}
	if responseErr != nil {
		config.GetLogger().Errorf("Failed to write error response: %v", responseErr)
	}
}
