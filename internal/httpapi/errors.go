package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// internalMessage is all a client learns about a server-side failure.
const internalMessage = "something went wrong, try again"

// fail maps a manager error to an HTTP error. Caller errors keep their
// message; anything else is logged and reported generically.
func (s *Server) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrOwnershipMismatch):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case types.IsValidationError(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		s.log.Error(c.Request().Context(), "request failed", zap.String("route", c.Path()), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, internalMessage)
	}
}

// badRequest reports an undecodable request body.
func badRequest(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
}
