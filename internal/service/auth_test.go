package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/repo"
	"github.com/Skotchmaster/charity/internal/transport"
	"github.com/Skotchmaster/charity/pkg/tokens"
)

func newAuthService(t *testing.T) (*AuthService, *repo.GormRepo) {
	t.Helper()
	r := newTestRepo(t)
	return &AuthService{
		Users:  r,
		Tokens: r,
		Hasher: plainHasher{},
		Issuer: &tokens.Issuer{
			AccessSecret:  []byte("access-secret"),
			RefreshSecret: []byte("refresh-secret"),
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    time.Hour,
		},
		Events: &recordingPublisher{},
	}, r
}

func addUser(t *testing.T, r *repo.GormRepo, email string, enabled bool, roles ...string) *domain.User {
	t.Helper()
	ctx := context.Background()
	u := &domain.User{
		Email:        email,
		Name:         "Anna",
		LastName:     "Nowak",
		PasswordHash: "hashed:secret1",
		Enabled:      enabled,
		Token:        "tok-" + email,
		CreatedAt:    time.Now().UTC(),
	}
	for _, name := range roles {
		role, err := r.EnsureRole(ctx, name)
		require.NoError(t, err)
		u.Roles = append(u.Roles, *role)
	}
	require.NoError(t, r.CreateUser(ctx, u))
	return u
}

func login(t *testing.T, svc *AuthService, email string) *AuthResult {
	t.Helper()
	res, err := svc.Authenticate(context.Background(), transport.LoginRequest{Username: email, Password: "secret1"})
	require.NoError(t, err)
	require.True(t, res.Issued())
	return res
}

func TestAuthenticate_IssuesPairWithRoles(t *testing.T) {
	svc, r := newAuthService(t)
	u := addUser(t, r, "anna@example.com", true, domain.RoleUser, domain.RoleAdmin)

	res := login(t, svc, "anna@example.com")
	assert.Equal(t, "User login was successful", res.Message)
	assert.NotEmpty(t, res.RefreshToken)

	claims, err := svc.ValidateAccess(context.Background(), res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "anna@example.com", claims.Subject)
	assert.ElementsMatch(t, []string{domain.RoleUser, domain.RoleAdmin}, claims.Roles)

	ledger, err := r.ListUserTokens(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, tokens.Sha256Hex(res.AccessToken), ledger[0].AccessToken)
}

func TestAuthenticate_SecondLoginRevokesFirst(t *testing.T) {
	svc, r := newAuthService(t)
	u := addUser(t, r, "anna@example.com", true, domain.RoleUser)
	ctx := context.Background()

	first := login(t, svc, "anna@example.com")
	second := login(t, svc, "anna@example.com")

	_, err := svc.ValidateAccess(ctx, first.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.ValidateAccess(ctx, second.AccessToken)
	assert.NoError(t, err)

	ledger, err := r.ListUserTokens(ctx, u.ID)
	require.NoError(t, err)
	live := 0
	for _, tok := range ledger {
		if !tok.LoggedOut {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

func TestAuthenticate_Refusals(t *testing.T) {
	svc, r := newAuthService(t)
	addUser(t, r, "anna@example.com", true, domain.RoleUser)
	inactive := addUser(t, r, "new@example.com", false, domain.RoleUser)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, transport.LoginRequest{Username: "anna@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, transport.LoginRequest{Username: "ghost@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.Authenticate(ctx, transport.LoginRequest{Username: "", Password: "secret1"})
	assert.ErrorIs(t, err, ErrValidation)

	res, err := svc.Authenticate(ctx, transport.LoginRequest{Username: "new@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.False(t, res.Issued())
	assert.Equal(t, "The account is not activated", res.Message)

	ledger, err := r.ListUserTokens(ctx, inactive.ID)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestRefresh(t *testing.T) {
	svc, r := newAuthService(t)
	addUser(t, r, "anna@example.com", true, domain.RoleUser)
	ctx := context.Background()

	first := login(t, svc, "anna@example.com")

	next, err := svc.Refresh(ctx, "Bearer "+first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "New token generated", next.Message)
	assert.NotEqual(t, first.AccessToken, next.AccessToken)

	_, err = svc.ValidateAccess(ctx, first.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.ValidateAccess(ctx, next.AccessToken)
	assert.NoError(t, err)

	_, err = svc.Refresh(ctx, "Bearer "+first.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized, "a rotated refresh token must not be reusable")
}

func TestRefresh_Rejects(t *testing.T) {
	svc, r := newAuthService(t)
	addUser(t, r, "anna@example.com", true, domain.RoleUser)
	ctx := context.Background()
	res := login(t, svc, "anna@example.com")

	for name, header := range map[string]string{
		"missing header":      "",
		"wrong scheme":        "Basic " + res.RefreshToken,
		"access token":        "Bearer " + res.AccessToken,
		"garbage":             "Bearer not-a-jwt",
		"bare token no space": "Bearer" + res.RefreshToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Refresh(ctx, header)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestLogout_InvalidatesAccessToken(t *testing.T) {
	svc, r := newAuthService(t)
	u := addUser(t, r, "anna@example.com", true, domain.RoleUser)
	ctx := context.Background()
	res := login(t, svc, "anna@example.com")

	require.NoError(t, svc.Logout(ctx, u.ID, res.AccessToken))

	_, err := svc.ValidateAccess(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Refresh(ctx, "Bearer "+res.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateAccess_ForeignSecret(t *testing.T) {
	svc, r := newAuthService(t)
	u := addUser(t, r, "anna@example.com", true, domain.RoleUser)

	other := &tokens.Issuer{AccessSecret: []byte("other"), RefreshSecret: []byte("other"), AccessTTL: time.Minute, RefreshTTL: time.Minute}
	forged, err := other.CreateAccessToken(u.ID, u.Email, []string{domain.RoleSuperAdmin}, time.Now().Add(time.Minute))
	require.NoError(t, err)

	_, err = svc.ValidateAccess(context.Background(), forged)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateAccess_FollowsAccountState(t *testing.T) {
	svc, r := newAuthService(t)
	u := addUser(t, r, "anna@example.com", true, domain.RoleUser, domain.RoleAdmin)
	ctx := context.Background()
	res := login(t, svc, "anna@example.com")

	stored, err := r.GetUser(ctx, u.ID)
	require.NoError(t, err)
	userRole, err := r.EnsureRole(ctx, domain.RoleUser)
	require.NoError(t, err)
	stored.Roles = []domain.Role{*userRole}
	require.NoError(t, r.SaveUser(ctx, stored))

	claims, err := svc.ValidateAccess(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleUser}, claims.Roles)

	stored.Enabled = false
	require.NoError(t, r.SaveUser(ctx, stored))
	_, err = svc.ValidateAccess(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
