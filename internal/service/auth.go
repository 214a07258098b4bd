package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Skotchmaster/amilimetros/internal/events"
	"github.com/Skotchmaster/amilimetros/internal/logging"
	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/repo"
	"github.com/Skotchmaster/amilimetros/internal/session"
	"github.com/Skotchmaster/amilimetros/internal/tokens"
)

type AuthService struct {
	Users     *repo.UserRepo
	Sessions  *session.Store
	Events    events.Publisher
	JWTSecret []byte
	AccessTTL time.Duration
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	SessionID   string
	User        models.User
}

func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) (uint, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	id, err := s.Users.Register(ctx, name, email, phone, password)
	if err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			l.Warn("register_error", "status", 409, "reason", "email already registered")
		} else {
			l.Error("register_error", "status", 500, "error", err)
		}
		return 0, err
	}

	publish(ctx, s.Events, events.TopicUsers, strconv.FormatUint(uint64(id), 10), events.UserRegistered{
		Type:   events.TypeUserRegistered,
		UserID: id,
		Email:  email,
	})
	l.Info("user_registered", "user_id", id)
	return id, nil
}

// Login checks the credentials, opens a session for the user and returns a
// token bound to it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	u, err := s.Users.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
		} else {
			l.Error("login_failed", "status", 500, "error", err)
		}
		return nil, err
	}

	sid := session.NewID()
	err = s.Sessions.Login(ctx, sid, session.State{
		UserID:    u.ID,
		IsAdmin:   u.IsAdmin,
		UserName:  u.Name,
		UserEmail: u.Email,
		UserPhone: u.Phone,
	})
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot open session", "error", err)
		return nil, err
	}

	exp := time.Now().Add(s.AccessTTL)
	token, err := tokens.CreateAccessToken(sid, exp, s.JWTSecret)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("login_ok", "user_id", u.ID)
	return &LoginResult{AccessToken: token, AccessExp: exp, SessionID: sid, User: *u}, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if err := s.Sessions.Logout(ctx, sid); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "error", err)
		return err
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.Users.GetUser(ctx, userID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if oldPassword == newPassword {
		return fmt.Errorf("new password must differ from the current one: %w", ErrValidation)
	}
	return s.Users.ChangePassword(ctx, userID, oldPassword, newPassword)
}

// UpdateProfile changes the account and the copy cached in the session.
func (s *AuthService) UpdateProfile(ctx context.Context, sid string, userID uint, name, email, phone string) (*models.User, error) {
	u, err := s.Users.UpdateUser(ctx, userID, name, email, phone)
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.UpdateProfile(ctx, sid, u.Name, u.Email, u.Phone); err != nil {
		logging.FromContext(ctx).Warn("session_profile_stale", "error", err)
	}
	return u, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Users.ListUsers(ctx)
}

// DeleteUser removes another account. Administrators cannot delete
// themselves.
func (s *AuthService) DeleteUser(ctx context.Context, actorID, userID uint) error {
	if actorID == userID {
		return fmt.Errorf("cannot delete your own account: %w", ErrForbidden)
	}
	if err := s.Users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	publish(ctx, s.Events, events.TopicUsers, strconv.FormatUint(uint64(userID), 10), events.UserDeleted{
		Type:   events.TypeUserDeleted,
		UserID: userID,
	})
	return nil
}
