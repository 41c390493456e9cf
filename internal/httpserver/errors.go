package httpserver

import (
	"errors"
	"net/http"
	"time"
	"unicode"

	"github.com/labstack/echo/v4"

	"github.com/smarttransit/backend/internal/apperr"
	"github.com/smarttransit/backend/internal/logging"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindAuthentication: http.StatusUnauthorized,
	apperr.KindAuthorization:  http.StatusForbidden,
	apperr.KindValidation:     http.StatusBadRequest,
	apperr.KindConflict:       http.StatusConflict,
	apperr.KindNotFound:       http.StatusNotFound,
	apperr.KindInternal:       http.StatusInternalServerError,
}

var kindCode = map[apperr.Kind]string{
	apperr.KindAuthentication: "AuthenticationFailure",
	apperr.KindAuthorization:  "AuthorizationFailure",
	apperr.KindValidation:     "ValidationFailure",
	apperr.KindConflict:       "ConflictFailure",
	apperr.KindNotFound:       "NotFound",
	apperr.KindInternal:       "InternalError",
}

// ErrorHandler translates the error taxonomy into HTTP responses. Every
// failure is logged with method and path before translation; internal
// errors never leak their cause to the client.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		req := c.Request()

		status := http.StatusInternalServerError
		message := "internal server error"
		code := kindCode[apperr.KindInternal]
		var fields map[string]string

		var appErr *apperr.Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = kindStatus[appErr.Kind]
			code = kindCode[appErr.Kind]
			if appErr.Kind != apperr.KindInternal {
				message = appErr.Message
			}
			fields = appErr.Fields
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
			code = "HttpException"
		}

		logging.FromContext(req.Context()).Error("request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"code", code,
			"error", err.Error(),
		)

		body := echo.Map{
			"statusCode": status,
			"message":    capitalizeFirst(message),
			"code":       code,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"path":       req.URL.Path,
			"method":     req.Method,
		}
		if len(fields) > 0 {
			body["fields"] = fields
		}

		if req.Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logging.FromContext(req.Context()).Error("error response write failed", "error", err)
		}
	}
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
