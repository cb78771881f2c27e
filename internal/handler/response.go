package handler

import (
	"errors"
	"net/http"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/service"
	"github.com/labstack/echo/v4"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// writeServiceError converts a service-layer error into the uniform HTTP
// taxonomy. Anything unrecognized is a storage failure: generic 500 body, the
// detail stays in the logs.
func writeServiceError(c echo.Context, err error, notFoundMsg string) error {
	var (
		forbiddenErr  *service.ForbiddenError
		validationErr *service.ValidationError
		conflictErr   *service.ConflictError
	)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", notFoundMsg))
	case errors.As(err, &forbiddenErr):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", forbiddenErr.Msg))
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", validationErr.Msg))
	case errors.As(err, &conflictErr):
		return c.JSON(http.StatusConflict, NewErrorResponse("conflict", conflictErr.Msg))
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "something went wrong"))
	}
}

func currentUID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}
