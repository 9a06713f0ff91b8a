package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/charity/internal/service"
	"github.com/Skotchmaster/charity/internal/transport"
	"github.com/Skotchmaster/charity/pkg/logging"
)

type UsersHTTP struct {
	Svc      *service.UserService
	Recovery *service.RecoveryService
}

func (h *UsersHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_register")

	var req transport.RegistrationRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "register_error", err)
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UsersHTTP) Verify(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_verify")

	var req transport.TokenRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "verify_error", err)
	}

	res, err := h.Svc.Activate(ctx, req.Token)
	if err != nil {
		return fail(l, "verify_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UsersHTTP) RequestRecovery(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_recovery")

	res, err := h.Recovery.RequestReset(ctx, c.Param("email"))
	if err != nil {
		return fail(l, "recovery_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UsersHTTP) CheckRecoveryToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_recovery_check")

	var req transport.TokenRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "recovery_check_error", err)
	}

	res, err := h.Recovery.CheckToken(ctx, req.Token)
	if err != nil {
		return fail(l, "recovery_check_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UsersHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_reset_password")

	var req transport.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "reset_password_error", err)
	}

	res, err := h.Recovery.ResetPassword(ctx, req)
	if err != nil {
		return fail(l, "reset_password_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UsersHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_me")

	a, err := actor(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.Get(ctx, a.UserID)
	if err != nil {
		return fail(l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(*u))
}

func (h *UsersHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_list")

	users, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponses(users))
}

func (h *UsersHTTP) ListByRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_by_role")

	users, err := h.Svc.ListByRole(ctx, roleName(c.Param("role")))
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponses(users))
}

// roleName accepts both "admin" and "ROLE_ADMIN".
func roleName(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "ROLE_") {
		s = "ROLE_" + s
	}
	return s
}

func (h *UsersHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_get")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(*u))
}

func (h *UsersHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_update")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req transport.UserUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_user_error", err)
	}

	u, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "update_user_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(*u))
}

func (h *UsersHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_delete")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := actor(c)
	if err != nil {
		return err
	}

	u, err := h.Svc.Delete(ctx, a.UserID, id)
	if err != nil {
		return fail(l, "delete_user_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(*u))
}
