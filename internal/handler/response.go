package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workspace-service/internal/apperror"
	"workspace-service/pkg/logger"
)

// Response is the envelope of every API reply.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

func successMessage(c echo.Context, status int, msg string) error {
	return c.JSON(status, Response{Success: true, Message: msg})
}

// fail writes err as an error envelope. Unclassified errors are logged and
// answered with a generic message.
func fail(c echo.Context, err error) error {
	kind := apperror.KindOf(err)
	if kind == apperror.Internal {
		logger.FromEcho(c).Error("Request failed",
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.JSON(apperror.HTTPStatus(kind), Response{Success: false, Message: apperror.Message(err)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, Response{Success: false, Message: msg})
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, Response{Success: false, Message: msg})
}

// ErrorHandler renders errors that reach echo itself (unknown routes, bad
// methods, recovered panics, timeouts) in the response envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && he.Code < http.StatusInternalServerError {
			msg = m
		}
		if he.Code >= http.StatusInternalServerError {
			logger.FromEcho(c).Error("Request failed", zap.Error(err))
			msg = apperror.Message(err)
		}
		_ = c.JSON(he.Code, Response{Success: false, Message: msg})
		return
	}
	_ = fail(c, err)
}
