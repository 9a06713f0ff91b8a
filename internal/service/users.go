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

type UserService struct {
	Users  UserStore
	Roles  RoleStore
	Hasher hash.Hasher
	Mailer Mailer
	Events Publisher
	Now    func() time.Time

	// Sessions is told to log the user out after a password change.
	Sessions SessionRevoker
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *UserService) Register(ctx context.Context, req transport.RegistrationRequest) (*transport.RegistrationResponse, error) {
	l := logging.FromContext(ctx).With("svc", "users.register", "email", req.Email)

	resp := &transport.RegistrationResponse{
		Request: transport.RegistrationEcho{Email: req.Email, Name: req.Name, LastName: req.LastName},
	}

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if req.Password != req.RepeatPassword {
		l.Warn("register_refused", "status", 200, "reason", "password mismatch")
		resp.Message = MsgPasswordMismatch
		return resp, nil
	}

	_, err := s.Users.FindUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		l.Warn("register_refused", "status", 200, "reason", "email taken")
		resp.Message = MsgEmailTaken
		return resp, nil
	case !errors.Is(err, domain.ErrNotFound):
		l.Error("register_error", "status", 500, "error", err)
		return nil, fmt.Errorf("find user: %w", err)
	}

	role, err := s.Roles.EnsureRole(ctx, domain.RoleUser)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot resolve default role", "error", err)
		return nil, fmt.Errorf("default role: %w", err)
	}

	pwHash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &domain.User{
		Email:        req.Email,
		Name:         req.Name,
		LastName:     req.LastName,
		PasswordHash: pwHash,
		Enabled:      false,
		Roles:        []domain.Role{*role},
		Token:        uuid.NewString(),
		CreatedAt:    s.now(),
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			resp.Message = MsgEmailTaken
			return resp, nil
		}
		l.Error("register_error", "status", 500, "reason", "cannot save user", "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.Mailer != nil {
		if err := s.Mailer.SendVerification(ctx, user.Email, user.Token); err != nil {
			l.Error("verification_mail_failed", "user_id", user.ID, "error", err)
		}
	}

	publish(ctx, s.Events, TopicUsers, user.ID, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	l.Info("register_successful", "user_id", user.ID)
	resp.Successful = true
	resp.Message = MsgRegistered
	return resp, nil
}

func (s *UserService) Activate(ctx context.Context, token string) (transport.Result, error) {
	l := logging.FromContext(ctx).With("svc", "users.activate")

	if token == "" || token == domain.VerifiedToken {
		return transport.Result{Message: MsgActivationFailed}, nil
	}

	user, err := s.Users.FindUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.Warn("activation_refused", "reason", "unknown token")
			return transport.Result{Message: MsgActivationFailed}, nil
		}
		return transport.Result{}, fmt.Errorf("find user by token: %w", err)
	}

	user.Enabled = true
	user.Token = domain.VerifiedToken
	if err := s.Users.SaveUser(ctx, user); err != nil {
		l.Error("activation_error", "status", 500, "user_id", user.ID, "error", err)
		return transport.Result{}, fmt.Errorf("save user: %w", err)
	}

	publish(ctx, s.Events, TopicUsers, user.ID, map[string]any{
		"type":   "user_activated",
		"userID": user.ID,
	})
	l.Info("activation_successful", "user_id", user.ID)
	return transport.Result{Successful: true, Message: MsgActivated}, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Users.ListUsers(ctx)
}

func (s *UserService) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	return s.Users.ListUsersByRole(ctx, role)
}

func (s *UserService) Get(ctx context.Context, id uint) (*domain.User, error) {
	return s.Users.GetUser(ctx, id)
}

// Update applies the fields present in req. Roles are replaced only by a
// non-empty roleIdList and the password is re-hashed only when it changes.
func (s *UserService) Update(ctx context.Context, id uint, req transport.UserUpdateRequest) (*domain.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.update", "user_id", id)

	user, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	for field, f := range map[string]domain.Field[string]{
		"email": req.Email, "name": req.Name, "lastName": req.LastName, "password": req.Password,
	} {
		if f.Set && f.Null {
			verr.Add(field, "must not be null")
		}
	}
	if req.Enabled.Set && req.Enabled.Null {
		verr.Add("enabled", "must not be null")
	}
	if req.Email.Present() {
		checkVar(verr, "email", req.Email.Value, "required,email,max=50")
	}
	if req.Name.Present() {
		checkVar(verr, "name", req.Name.Value, "notblank,max=50")
	}
	if req.LastName.Present() {
		checkVar(verr, "lastName", req.LastName.Value, "notblank,max=50")
	}
	if req.Password.Present() {
		checkVar(verr, "password", req.Password.Value, "required,min=6,max=72")
	}

	var roles []domain.Role
	if req.RoleIDs.Present() && len(req.RoleIDs.Value) > 0 {
		roles, err = s.Roles.RolesByIDs(ctx, req.RoleIDs.Value)
		if errors.Is(err, domain.ErrNotFound) {
			verr.Add("roleIdList", "contains an unknown role")
		} else if err != nil {
			return nil, fmt.Errorf("resolve roles: %w", err)
		}
	}
	if err := verr.OrNil(); err != nil {
		l.Warn("update_user_error", "status", 400, "error", err)
		return nil, err
	}

	if req.Email.Present() && req.Email.Value != user.Email {
		other, err := s.Users.FindUserByEmail(ctx, req.Email.Value)
		if err == nil && other.ID != user.ID {
			return nil, fmt.Errorf("%w: %s", domain.ErrConflict, MsgEmailTaken)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
	}

	domain.Apply(&user.Email, req.Email)
	domain.Apply(&user.Name, req.Name)
	domain.Apply(&user.LastName, req.LastName)
	domain.Apply(&user.Enabled, req.Enabled)

	passwordChanged := false
	if req.Password.Present() && !s.Hasher.Matches(user.PasswordHash, req.Password.Value) {
		pwHash, err := s.Hasher.Hash(req.Password.Value)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = pwHash
		passwordChanged = true
	}
	if roles != nil {
		user.Roles = roles
	}

	if err := s.Users.SaveUser(ctx, user); err != nil {
		l.Error("update_user_error", "status", 500, "error", err)
		return nil, err
	}
	if passwordChanged {
		if err := revokeSessions(ctx, s.Sessions, user.ID); err != nil {
			l.Error("update_user_error", "status", 500, "error", err)
			return nil, err
		}
	}

	publish(ctx, s.Events, TopicUsers, user.ID, map[string]any{
		"type":   "user_updated",
		"userID": user.ID,
	})
	l.Info("update_user_success")
	return user, nil
}

// Delete removes a user and returns its state before removal. Role links are
// cleared before the row is deleted.
func (s *UserService) Delete(ctx context.Context, actorID, id uint) (*domain.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.delete", "user_id", id, "actor_id", actorID)

	if actorID == id {
		l.Warn("delete_user_refused", "status", 403, "reason", "self deletion")
		return nil, fmt.Errorf("%w: cannot delete own account", ErrForbidden)
	}

	user, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.Users.ClearUserRoles(ctx, id); err != nil {
		l.Error("delete_user_error", "status", 500, "reason", "cannot clear roles", "error", err)
		return nil, err
	}
	if err := s.Users.DeleteUser(ctx, id); err != nil {
		l.Error("delete_user_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, TopicUsers, id, map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	l.Info("delete_user_success")
	return user, nil
}
