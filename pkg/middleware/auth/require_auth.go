package authmw

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/charity/pkg/logging"
	"github.com/Skotchmaster/charity/pkg/tokens"
)

const (
	KeyUserID      = "user_id"
	KeyEmail       = "email"
	KeyRoles       = "roles"
	KeyAccessToken = "access_token"
)

// AccessValidator accepts an access token only while it is signed, not logged out
// and owned by an enabled account. Claims carry the account's current roles.
type AccessValidator interface {
	ValidateAccess(ctx context.Context, accessToken string) (*tokens.AccessClaims, error)
}

type Middleware struct {
	Validator AccessValidator
}

func New(v AccessValidator) *Middleware {
	return &Middleware{Validator: v}
}

// RequireAuth rejects requests without a live bearer access token.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("mw", "auth")

		raw, ok := tokens.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			l.Warn("auth_failed", "status", 401, "reason", "missing bearer token")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := m.Validator.ValidateAccess(ctx, raw)
		if err != nil {
			l.Warn("auth_failed", "status", 401, "reason", "invalid access token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		setUserContext(c, claims, raw)
		c.SetRequest(c.Request().WithContext(
			logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", claims.UserID)),
		))
		return next(c)
	}
}

// RequireRole passes when the caller holds any of roles. It must run after RequireAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			held := Roles(c)
			for _, want := range roles {
				for _, r := range held {
					if r == want {
						return next(c)
					}
				}
			}
			logging.FromContext(c.Request().Context()).Warn("auth_failed",
				"status", 403, "reason", "missing role", "required", roles)
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
	}
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims, raw string) {
	c.Set(KeyUserID, claims.UserID)
	c.Set(KeyEmail, claims.Subject)
	c.Set(KeyRoles, claims.Roles)
	c.Set(KeyAccessToken, raw)
}

func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(KeyUserID).(uint)
	return id, ok
}

func Roles(c echo.Context) []string {
	roles, _ := c.Get(KeyRoles).([]string)
	return roles
}

func AccessToken(c echo.Context) string {
	tok, _ := c.Get(KeyAccessToken).(string)
	return tok
}
