package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/metrics"
	authmw "github.com/Skotchmaster/charity/pkg/middleware/auth"
)

type Deps struct {
	Auth         *AuthHTTP
	Users        *UsersHTTP
	Categories   *CategoriesHTTP
	Institutions *InstitutionsHTTP
	Donations    *DonationsHTTP
	Admin        *AdminHTTP

	AuthMW *authmw.Middleware
	// RateLimit guards the public credential routes. Nil disables it.
	RateLimit echo.MiddlewareFunc
	Metrics   *metrics.Metrics
	Ready     func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}

	limited := d.RateLimit
	if limited == nil {
		limited = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	requireAuth := d.AuthMW.RequireAuth
	admin := authmw.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin)
	superAdmin := authmw.RequireRole(domain.RoleSuperAdmin)

	e.POST("/login", d.Auth.Login, limited)
	e.POST("/refresh_token", d.Auth.Refresh, limited)
	e.POST("/logout", d.Auth.LogOut, requireAuth)

	api := e.Group("/api")
	api.GET("/stats", d.Donations.Stats)

	users := api.Group("/users")
	users.POST("/registration", d.Users.Register)
	users.GET("/verification", d.Users.Verify)
	users.POST("/recovery/:email", d.Users.RequestRecovery, limited)
	users.GET("/recovery/password", d.Users.CheckRecoveryToken)
	users.POST("/recovery/password", d.Users.ResetPassword)
	users.GET("/me", d.Users.Me, requireAuth)
	users.GET("", d.Users.List, requireAuth, admin)
	users.GET("/role/:role", d.Users.ListByRole, requireAuth, admin)
	users.GET("/:id", d.Users.Get, requireAuth, admin)
	users.PUT("/:id", d.Users.Update, requireAuth, admin)
	users.DELETE("/:id", d.Users.Delete, requireAuth, superAdmin)

	adminGroup := api.Group("/admin", requireAuth, admin)
	adminGroup.GET("/users", d.Admin.Users)
	adminGroup.GET("/admins", d.Admin.Admins)
	adminGroup.POST("/users/:id/password", d.Admin.ResetPassword)

	cats := api.Group("/categories")
	cats.GET("", d.Categories.List)
	cats.GET("/:id", d.Categories.Get)
	cats.POST("/add", d.Categories.Add, requireAuth, admin)
	cats.PUT("/:id", d.Categories.Update, requireAuth, admin)
	cats.DELETE("/:id", d.Categories.Delete, requireAuth, superAdmin)

	insts := api.Group("/institutions")
	insts.GET("", d.Institutions.List)
	insts.GET("/search", d.Institutions.Search)
	insts.GET("/:id", d.Institutions.Get)
	insts.POST("/add", d.Institutions.Add, requireAuth, admin)
	insts.PUT("/:id", d.Institutions.Update, requireAuth, admin)
	insts.DELETE("/:id", d.Institutions.Delete, requireAuth, superAdmin)

	donations := api.Group("/donations")
	donations.GET("/mine", d.Donations.Mine, requireAuth)
	donations.POST("/add", d.Donations.Add, requireAuth)
	donations.GET("", d.Donations.List, requireAuth, admin)
	donations.GET("/:id", d.Donations.Get, requireAuth, admin)
	donations.PUT("/:id", d.Donations.Update, requireAuth, admin)
	donations.DELETE("/:id", d.Donations.Delete, requireAuth, admin)
}
