package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/amilimetros/internal/logging"
	"github.com/Skotchmaster/amilimetros/internal/session"
	"github.com/Skotchmaster/amilimetros/internal/tokens"
)

const (
	AccessCookie = "accessToken"

	keySessionID = "session_id"
	keyState     = "session_state"
)

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uint) bool
}

// Auth resolves the bearer token or access cookie to a logged-in session.
type Auth struct {
	Secret   []byte
	Sessions *session.Store
	Admins   AdminChecker
}

func (a *Auth) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, fromCookie := accessToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, a.Secret)
		if err != nil {
			if fromCookie {
				ClearAccessCookie(c)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		ctx := c.Request().Context()
		st, err := a.Sessions.Load(ctx, claims.SessionID())
		if err != nil {
			logging.FromContext(ctx).Error("session_load_failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
		}
		if !st.LoggedIn || st.UserID == 0 {
			// Logged-out keys have no further use once their token comes back.
			if err := a.Sessions.Forget(ctx, claims.SessionID()); err != nil {
				logging.FromContext(ctx).Warn("session_forget_failed", "error", err)
			}
			if fromCookie {
				ClearAccessCookie(c)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "session ended")
		}

		c.Set(keySessionID, claims.SessionID())
		c.Set(keyState, st)
		l := logging.FromContext(ctx).With("user_id", st.UserID)
		c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
		return next(c)
	}
}

// RequireAdmin trusts the session flag only after the users table agrees.
func (a *Auth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return a.RequireLogin(func(c echo.Context) error {
		st := State(c)
		if !st.IsAdmin || a.Admins == nil || !a.Admins.IsAdmin(c.Request().Context(), st.UserID) {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	})
}

func accessToken(c echo.Context) (string, bool) {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(rest), false
		}
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return ck.Value, true
	}
	return "", false
}

func ClearAccessCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     AccessCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func SessionID(c echo.Context) string {
	sid, _ := c.Get(keySessionID).(string)
	return sid
}

func State(c echo.Context) session.State {
	st, _ := c.Get(keyState).(session.State)
	return st
}

func UserID(c echo.Context) uint {
	return State(c).UserID
}
