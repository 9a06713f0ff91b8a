package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/transport"
	"github.com/Skotchmaster/charity/pkg/hash"
	"github.com/Skotchmaster/charity/pkg/logging"
)

type RecoveryService struct {
	Users    UserStore
	Recovery RecoveryStore
	Hasher   hash.Hasher
	Mailer   Mailer
	Events   Publisher
	Sessions SessionRevoker

	// TTL bounds how long a reset token stays usable. Zero disables the check.
	TTL time.Duration
	// ConcealUnknownEmails answers unknown addresses with the success message.
	ConcealUnknownEmails bool
	Now                  func() time.Time
}

func (s *RecoveryService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *RecoveryService) RequestReset(ctx context.Context, email string) (transport.Result, error) {
	l := logging.FromContext(ctx).With("svc", "recovery.request", "email", email)

	_, err := s.Users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.Warn("recovery_refused", "reason", "unknown email")
			if s.ConcealUnknownEmails {
				return transport.Result{Successful: true, Message: MsgResetLinkSent}, nil
			}
			return transport.Result{Message: MsgWrongEmail}, nil
		}
		return transport.Result{}, fmt.Errorf("find user: %w", err)
	}

	if err := s.Recovery.DeleteRecoveryByEmail(ctx, email); err != nil {
		l.Error("recovery_error", "status", 500, "reason", "cannot drop previous token", "error", err)
		return transport.Result{}, err
	}

	rec := &domain.RecoveryPassword{
		Email:    email,
		Token:    uuid.NewString(),
		IssuedAt: s.now(),
	}
	if err := s.Recovery.CreateRecovery(ctx, rec); err != nil {
		l.Error("recovery_error", "status", 500, "reason", "cannot save token", "error", err)
		return transport.Result{}, err
	}

	if s.Mailer != nil {
		if err := s.Mailer.SendPasswordReset(ctx, email, rec.Token); err != nil {
			l.Error("reset_mail_failed", "error", err)
		}
	}

	l.Info("recovery_requested")
	return transport.Result{Successful: true, Message: MsgResetLinkSent}, nil
}

// live returns the recovery row for token when it exists and has not expired.
func (s *RecoveryService) live(ctx context.Context, token string) (*domain.RecoveryPassword, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	rec, err := s.Recovery.FindRecoveryByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.TTL > 0 && s.now().Sub(rec.IssuedAt) > s.TTL {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func (s *RecoveryService) CheckToken(ctx context.Context, token string) (transport.Result, error) {
	_, err := s.live(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return transport.Result{Message: MsgTokenInvalid}, nil
		}
		return transport.Result{}, err
	}
	return transport.Result{Successful: true, Message: MsgTokenValid}, nil
}

func (s *RecoveryService) ResetPassword(ctx context.Context, req transport.ResetPasswordRequest) (transport.Result, error) {
	l := logging.FromContext(ctx).With("svc", "recovery.reset")

	rec, err := s.live(ctx, req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.Warn("reset_refused", "reason", "invalid token")
			return transport.Result{Message: MsgTokenInvalid}, nil
		}
		return transport.Result{}, err
	}

	if req.Password != req.RepeatPassword {
		return transport.Result{Message: MsgPasswordMismatch}, nil
	}
	if err := validateStruct(req); err != nil {
		return transport.Result{}, err
	}

	user, err := s.Users.FindUserByEmail(ctx, rec.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return transport.Result{Message: MsgTokenInvalid}, nil
		}
		return transport.Result{}, fmt.Errorf("find user: %w", err)
	}

	pwHash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return transport.Result{}, err
	}
	user.PasswordHash = pwHash
	if err := s.Users.SaveUser(ctx, user); err != nil {
		l.Error("reset_error", "status", 500, "reason", "cannot save password", "error", err)
		return transport.Result{}, err
	}
	if err := s.Recovery.DeleteRecovery(ctx, rec.ID); err != nil {
		l.Error("reset_error", "status", 500, "reason", "cannot drop token", "error", err)
		return transport.Result{}, err
	}
	if err := revokeSessions(ctx, s.Sessions, user.ID); err != nil {
		l.Error("reset_error", "status", 500, "reason", "cannot revoke sessions", "error", err)
		return transport.Result{}, err
	}

	publish(ctx, s.Events, TopicUsers, user.ID, map[string]any{
		"type":   "password_changed",
		"userID": user.ID,
	})
	l.Info("user changed password", "user_id", user.ID)
	return transport.Result{Successful: true, Message: MsgPasswordChanged}, nil
}
