package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/service"
	authmw "github.com/Skotchmaster/charity/pkg/middleware/auth"
)

// fail logs err under event and maps it to the matching HTTP error.
func fail(l *slog.Logger, event string, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		l.Warn(event, "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"message": "validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "not found")
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		l.Warn(event, "status", 409, "reason", "conflict", "error", err)
		return echo.NewHTTPError(http.StatusConflict, conflictMessage(err))
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", 403, "reason", "forbidden", "error", err)
		return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrAccountNotFound):
		l.Warn(event, "status", 401, "reason", "bad credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrUnauthorized):
		l.Warn(event, "status", 401, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func conflictMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrConflict.Error()+": ")
	if msg == "" || msg == domain.ErrConflict.Error() {
		return "conflict"
	}
	return msg
}

func badBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func actor(c echo.Context) (service.Actor, error) {
	id, ok := authmw.UserID(c)
	if !ok {
		return service.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return service.Actor{UserID: id, Roles: authmw.Roles(c)}, nil
}
