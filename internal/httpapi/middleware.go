package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/chatkeep/internal/logging"
)

// HeaderOwnerID carries the acting user's id.
const HeaderOwnerID = "X-Owner-ID"

// ownerKey is the echo context key holding the owner id.
const ownerKey = "owner_id"

// requestContext copies the request id into the request context so that
// log lines from deeper layers carry it.
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		req := c.Request()
		c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
		return next(c)
	}
}

// observeRequest logs and counts every request.
func (s *Server) observeRequest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		status := statusOf(c, err)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTP(c.Request().Method, route, status)
		s.log.Info(c.Request().Context(), "http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}

// statusOf returns the status the response will carry once echo's error
// handler has run.
func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// requireOwner rejects requests without an X-Owner-ID header.
func (s *Server) requireOwner(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		owner := strings.TrimSpace(c.Request().Header.Get(HeaderOwnerID))
		if owner == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing "+HeaderOwnerID+" header")
		}
		c.Set(ownerKey, owner)
		req := c.Request()
		c.SetRequest(req.WithContext(logging.WithOwnerID(req.Context(), owner)))
		return next(c)
	}
}

func ownerOf(c echo.Context) string {
	owner, _ := c.Get(ownerKey).(string)
	return owner
}
