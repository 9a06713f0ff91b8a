package service

import (
	"context"

	"github.com/Skotchmaster/charity/internal/domain"
)

type UserStore interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListUsersByRole(ctx context.Context, role string) ([]domain.User, error)
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByToken(ctx context.Context, token string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	SaveUser(ctx context.Context, u *domain.User) error
	ClearUserRoles(ctx context.Context, id uint) error
	DeleteUser(ctx context.Context, id uint) error
}

type RoleStore interface {
	RolesByIDs(ctx context.Context, ids []uint) ([]domain.Role, error)
	EnsureRole(ctx context.Context, name string) (*domain.Role, error)
}

// SessionRevoker logs a user out everywhere.
type SessionRevoker interface {
	RevokeUserTokens(ctx context.Context, userID uint) error
}

type TokenStore interface {
	SessionRevoker
	RotateUserTokens(ctx context.Context, t *domain.Token) error
	RotateFromRefresh(ctx context.Context, refreshHash string, t *domain.Token) error
	FindLiveTokenByAccess(ctx context.Context, accessHash string) (*domain.Token, error)
	LogoutToken(ctx context.Context, accessHash string) error
}

type RecoveryStore interface {
	FindRecoveryByToken(ctx context.Context, token string) (*domain.RecoveryPassword, error)
	DeleteRecoveryByEmail(ctx context.Context, email string) error
	CreateRecovery(ctx context.Context, rec *domain.RecoveryPassword) error
	DeleteRecovery(ctx context.Context, id uint) error
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id uint) (*domain.Category, error)
	CategoriesByIDs(ctx context.Context, ids []uint) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	SaveCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id uint) error
}

type InstitutionStore interface {
	ListInstitutions(ctx context.Context) ([]domain.Institution, error)
	GetInstitution(ctx context.Context, id uint) (*domain.Institution, error)
	CreateInstitution(ctx context.Context, i *domain.Institution) error
	SaveInstitution(ctx context.Context, i *domain.Institution) error
	DeleteInstitution(ctx context.Context, id uint) error
	SearchInstitutions(ctx context.Context, q string, limit int) ([]domain.Institution, error)
}

type DonationStore interface {
	ListDonations(ctx context.Context) ([]domain.Donation, error)
	ListDonationsByUser(ctx context.Context, userID uint) ([]domain.Donation, error)
	GetDonation(ctx context.Context, id uint) (*domain.Donation, error)
	CreateDonation(ctx context.Context, d *domain.Donation) error
	SaveDonation(ctx context.Context, d *domain.Donation) error
	DeleteDonation(ctx context.Context, id uint) error
	DonationStats(ctx context.Context) (domain.DonationStats, error)
}

// Mailer delivers account emails. Delivery is best effort.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// InstitutionIndex is an optional full-text index kept beside the store.
type InstitutionIndex interface {
	Index(ctx context.Context, i domain.Institution) error
	Remove(ctx context.Context, id uint) error
	Search(ctx context.Context, q string, limit int) ([]domain.Institution, error)
}
