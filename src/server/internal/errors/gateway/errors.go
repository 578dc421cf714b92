package gateway

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/veedubyou/stem-separator/src/server/api_error"
	"github.com/veedubyou/stem-separator/src/server/internal/errors/api"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/errors"
	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
)

var httpStatusCodeMap = map[api.ErrorCode]int{
	api.DefaultErrorCode:                    http.StatusInternalServerError,
	separationerrors.NoFileProvidedCode:     http.StatusBadRequest,
	separationerrors.NoFileSelectedCode:     http.StatusBadRequest,
	separationerrors.FileTypeNotAllowedCode: http.StatusBadRequest,
	separationerrors.StagingFailedCode:      http.StatusInternalServerError,
	separationerrors.ExtractionFailedCode:   http.StatusInternalServerError,
	separationerrors.InferenceFailedCode:    http.StatusInternalServerError,
	separationerrors.WriteFailedCode:        http.StatusInternalServerError,
	separationerrors.StemNotFoundCode:       http.StatusNotFound,
}

func StatusCode(code api.ErrorCode) (int, bool) {
	statusCode, ok := httpStatusCodeMap[code]
	return statusCode, ok
}

func ErrorResponse(c echo.Context, err *api.Error) error {
	statusCode, ok := StatusCode(err.ErrorCode)
	if !ok {
		msg := fmt.Sprintf("Error code %s has no HTTP status code mapping", err.ErrorCode)
		panic(msg)
	}

	logger := cerr.Logger(err.InternalError).WithFields(cerr.F{
		"code":   err.ErrorCode,
		"status": statusCode,
		"path":   c.Request().URL.Path,
	})

	if statusCode >= http.StatusInternalServerError {
		logger.Error(err.UserMessage)
	} else {
		logger.Warn(err.UserMessage)
	}

	return c.JSON(statusCode, api_error.JSONAPIError{
		Error: err.UserMessage,
		Code:  string(err.ErrorCode),
	})
}
