package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/transport"
	"github.com/Skotchmaster/charity/pkg/hash"
	"github.com/Skotchmaster/charity/pkg/logging"
)

type AdminService struct {
	Users        UserStore
	Roles        RoleStore
	Categories   CategoryStore
	Institutions InstitutionStore
	Hasher       hash.Hasher
	Sessions     SessionRevoker
	Now          func() time.Time
}

type SeedInput struct {
	AdminEmail    string
	AdminPassword string
}

type SeedReport struct {
	Roles            int
	AdminCreated     bool
	CategoryCreated  bool
	InstitutionAdded bool
}

// Seed creates the roles, a super admin and one starter category and
// institution. Running it again changes nothing that already exists.
func (s *AdminService) Seed(ctx context.Context, in SeedInput) (*SeedReport, error) {
	l := logging.FromContext(ctx).With("svc", "admin.seed")
	report := &SeedReport{}

	roles := make([]domain.Role, 0, 3)
	for _, name := range []string{domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin} {
		role, err := s.Roles.EnsureRole(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("ensure role %s: %w", name, err)
		}
		roles = append(roles, *role)
	}
	report.Roles = len(roles)

	if in.AdminPassword != "" {
		_, err := s.Users.FindUserByEmail(ctx, in.AdminEmail)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			pwHash, err := s.Hasher.Hash(in.AdminPassword)
			if err != nil {
				return nil, err
			}
			now := time.Now().UTC()
			if s.Now != nil {
				now = s.Now()
			}
			admin := &domain.User{
				Email:        in.AdminEmail,
				Name:         "Admin",
				LastName:     "Admin",
				PasswordHash: pwHash,
				Enabled:      true,
				Roles:        roles,
				Token:        domain.VerifiedToken,
				CreatedAt:    now,
			}
			if err := s.Users.CreateUser(ctx, admin); err != nil {
				return nil, fmt.Errorf("create admin: %w", err)
			}
			report.AdminCreated = true
		case err != nil:
			return nil, fmt.Errorf("find admin: %w", err)
		}
	} else {
		l.Warn("seed_admin_skipped", "reason", "ADMIN_PASSWORD is empty")
	}

	cats, err := s.Categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		if err := s.Categories.CreateCategory(ctx, &domain.Category{Name: "Clothes"}); err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		report.CategoryCreated = true
	}

	insts, err := s.Institutions.ListInstitutions(ctx)
	if err != nil {
		return nil, err
	}
	if len(insts) == 0 {
		basic := &domain.Institution{Name: "Basic foundation", Description: "Default recipient of donations"}
		if err := s.Institutions.CreateInstitution(ctx, basic); err != nil {
			return nil, fmt.Errorf("create institution: %w", err)
		}
		report.InstitutionAdded = true
	}

	l.Info("seed_complete", "admin_created", report.AdminCreated)
	return report, nil
}

// ListPlainUsers returns accounts holding no role besides ROLE_USER.
func (s *AdminService) ListPlainUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.Users.ListUsersByRole(ctx, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if len(u.Roles) == 1 {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]domain.User, error) {
	return s.Users.ListUsersByRole(ctx, domain.RoleAdmin)
}

func (s *AdminService) ResetPasswordFor(ctx context.Context, id uint, req transport.AdminPasswordRequest) (transport.Result, error) {
	l := logging.FromContext(ctx).With("svc", "admin.reset_password", "user_id", id)

	if req.Password != req.RepeatPassword {
		return transport.Result{Message: MsgPasswordMismatch}, nil
	}
	if err := validateStruct(req); err != nil {
		return transport.Result{}, err
	}

	user, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return transport.Result{}, err
	}
	pwHash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return transport.Result{}, err
	}
	user.PasswordHash = pwHash
	if err := s.Users.SaveUser(ctx, user); err != nil {
		l.Error("reset_password_error", "status", 500, "error", err)
		return transport.Result{}, err
	}
	if err := revokeSessions(ctx, s.Sessions, user.ID); err != nil {
		l.Error("reset_password_error", "status", 500, "error", err)
		return transport.Result{}, err
	}

	l.Info("user changed password")
	return transport.Result{Successful: true, Message: MsgPasswordChanged}, nil
}
