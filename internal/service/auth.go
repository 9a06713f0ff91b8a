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
	"github.com/Skotchmaster/charity/pkg/tokens"
)

type AuthService struct {
	Users  UserStore
	Tokens TokenStore
	Hasher hash.Hasher
	Issuer *tokens.Issuer
	Events Publisher
}

// AuthResult carries a fresh pair. Tokens are empty when the login was refused
// for an inactive account.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	Message      string
	UserID       uint
}

func (r *AuthResult) Issued() bool {
	return r.AccessToken != ""
}

func (s *AuthService) Authenticate(ctx context.Context, req transport.LoginRequest) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", req.Username)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.Users.FindUserByEmail(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "account not found")
			return nil, ErrAccountNotFound
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.Hasher.Matches(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	if !user.Enabled {
		l.Warn("login_refused", "status", 403, "reason", "account not activated")
		return &AuthResult{Message: MsgNotActivated, UserID: user.ID}, nil
	}

	res, err := s.issue(ctx, user, "")
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	res.Message = MsgLoginSuccessful

	publish(ctx, s.Events, TopicAuth, user.ID, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})
	l.Info("login_successful", "user_id", user.ID)
	return res, nil
}

// Refresh mints a new pair from the refresh token carried in an Authorization header.
func (s *AuthService) Refresh(ctx context.Context, authorization string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	raw, ok := tokens.BearerToken(authorization)
	if !ok {
		l.Warn("refresh_failed", "status", 401, "reason", "missing bearer token")
		return nil, ErrUnauthorized
	}

	claims, err := tokens.RefreshClaimsFromToken(raw, s.Issuer.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid refresh token", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.Users.FindUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "user not found")
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.ID != claims.UserID || !user.Enabled {
		l.Warn("refresh_failed", "status", 401, "reason", "token does not match user")
		return nil, ErrUnauthorized
	}

	res, err := s.issue(ctx, user, tokens.Sha256Hex(raw))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "refresh token revoked", "user_id", user.ID)
			return nil, ErrUnauthorized
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	res.Message = MsgTokenRefreshed

	publish(ctx, s.Events, TopicAuth, user.ID, map[string]any{
		"type":   "token_refreshed",
		"userID": user.ID,
	})
	return res, nil
}

// issue signs a pair and stores it as the only live one. With a non-empty
// refreshHash the rotation only happens while that refresh token is live.
func (s *AuthService) issue(ctx context.Context, user *domain.User, refreshHash string) (*AuthResult, error) {
	pair, err := s.Issuer.Issue(user.ID, user.Email, user.RoleNames())
	if err != nil {
		return nil, fmt.Errorf("sign tokens: %w", err)
	}

	tok := &domain.Token{
		UserID:       user.ID,
		AccessToken:  tokens.Sha256Hex(pair.AccessToken),
		RefreshToken: tokens.Sha256Hex(pair.RefreshToken),
	}
	if refreshHash == "" {
		err = s.Tokens.RotateUserTokens(ctx, tok)
	} else {
		err = s.Tokens.RotateFromRefresh(ctx, refreshHash, tok)
	}
	if err != nil {
		return nil, fmt.Errorf("store tokens: %w", err)
	}

	return &AuthResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		AccessExp:    pair.AccessExp,
		RefreshExp:   pair.RefreshExp,
		UserID:       user.ID,
	}, nil
}

// ValidateAccess accepts a signed access token only while its ledger row is
// live and its owner is enabled. The returned roles are the owner's current ones.
func (s *AuthService) ValidateAccess(ctx context.Context, accessToken string) (*tokens.AccessClaims, error) {
	claims, err := tokens.AccessClaimsFromToken(accessToken, s.Issuer.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	tok, err := s.Tokens.FindLiveTokenByAccess(ctx, tokens.Sha256Hex(accessToken))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: token logged out", ErrUnauthorized)
		}
		return nil, err
	}
	if tok.UserID != claims.UserID {
		return nil, fmt.Errorf("%w: token owner mismatch", ErrUnauthorized)
	}

	user, err := s.Users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
		}
		return nil, err
	}
	if !user.Enabled {
		return nil, fmt.Errorf("%w: account disabled", ErrUnauthorized)
	}
	claims.Roles = user.RoleNames()
	return claims, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uint, accessToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout", "user_id", userID)

	if err := s.Tokens.LogoutToken(ctx, tokens.Sha256Hex(accessToken)); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return err
	}

	publish(ctx, s.Events, TopicAuth, userID, map[string]any{
		"type":   "user_logged_out",
		"userID": userID,
	})
	l.Info("logout_successful")
	return nil
}
