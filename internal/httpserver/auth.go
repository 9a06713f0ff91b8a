package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/charity/internal/metrics"
	"github.com/Skotchmaster/charity/internal/service"
	"github.com/Skotchmaster/charity/internal/transport"
	"github.com/Skotchmaster/charity/pkg/logging"
	authmw "github.com/Skotchmaster/charity/pkg/middleware/auth"
)

type AuthHTTP struct {
	Svc     *service.AuthService
	Metrics *metrics.Metrics
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}

	res, err := h.Svc.Authenticate(ctx, req)
	if err != nil {
		h.Metrics.ObserveAuth("login", "denied")
		return fail(l, "login_failed", err)
	}
	if !res.Issued() {
		h.Metrics.ObserveAuth("login", "inactive")
		return c.JSON(http.StatusForbidden, transport.AuthenticationResponse{Message: res.Message})
	}

	h.Metrics.ObserveAuth("login", "ok")
	return c.JSON(http.StatusOK, transport.AuthenticationResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Message:      res.Message,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	res, err := h.Svc.Refresh(ctx, c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		h.Metrics.ObserveAuth("refresh", "denied")
		return fail(l, "refresh_failed", err)
	}

	h.Metrics.ObserveAuth("refresh", "ok")
	return c.JSON(http.StatusOK, transport.AuthenticationResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Message:      res.Message,
	})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	userID, _ := authmw.UserID(c)
	if err := h.Svc.Logout(ctx, userID, authmw.AccessToken(c)); err != nil {
		return fail(l, "logout_failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
