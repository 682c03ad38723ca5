package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nri-matrimony/matrimony/services/logging"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorHandler renders every error as {"message"} and hides anything that is not an *echo.HTTPError.
func ErrorHandler(logger *logging.Service) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("failed to write error response", zap.Error(err))
		}
	}
}

func render(err error) (int, errorBody) {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return http.StatusInternalServerError, errorBody{Message: internalErrorMessage}
	}

	switch msg := he.Message.(type) {
	case FieldError:
		return he.Code, errorBody{Message: msg.Message, Field: msg.Field}
	case string:
		return he.Code, errorBody{Message: msg}
	default:
		return he.Code, errorBody{Message: http.StatusText(he.Code)}
	}
}
