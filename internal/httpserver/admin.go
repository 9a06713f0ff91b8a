package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/charity/internal/service"
	"github.com/Skotchmaster/charity/internal/transport"
	"github.com/Skotchmaster/charity/pkg/logging"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) Users(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_users")

	users, err := h.Svc.ListPlainUsers(ctx)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponses(users))
}

func (h *AdminHTTP) Admins(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_admins")

	users, err := h.Svc.ListAdmins(ctx)
	if err != nil {
		return fail(l, "list_admins_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponses(users))
}

func (h *AdminHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_reset_password")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req transport.AdminPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "reset_password_error", err)
	}

	res, err := h.Svc.ResetPasswordFor(ctx, id, req)
	if err != nil {
		return fail(l, "reset_password_error", err)
	}
	return c.JSON(http.StatusOK, res)
}
