// Package session holds the signed-in user's credentials for the lifetime
// of a process. It is created at startup, changed only through Login,
// Logout and Expire, and persisted in the key/value store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
)

// Store keys. They match what earlier clients wrote so existing state
// files keep working.
const (
	KeyToken    = "token"
	KeyRole     = "user_role"
	KeyUserID   = "user_id"
	KeyUsername = "username"
)

// DefaultRole is assigned when neither the login response nor the token
// names a role.
const DefaultRole = "user"

// ErrNoSession is returned when an operation needs a signed-in user.
var ErrNoSession = errors.New("not signed in")

// KV is the persistent storage the session writes through to.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Redirector sends the user back to the login entry point.
type Redirector interface {
	RedirectToLogin()
}

// RedirectFunc adapts a function to Redirector.
type RedirectFunc func()

// RedirectToLogin implements Redirector.
func (f RedirectFunc) RedirectToLogin() { f() }

// User is the signed-in identity.
type User struct {
	ID    int64
	Name  string
	Email string
	Role  string
	Login string
}

// IsAdmin reports whether the user may use admin-only operations.
func (u User) IsAdmin() bool {
	return u.Role == "admin"
}

// Info is what the login endpoint tells us beyond the token itself.
type Info struct {
	UserID   int64
	Username string
	Role     string
}

// Session is the explicit auth context passed to services.
type Session struct {
	kv       KV
	redirect Redirector
	log      *slog.Logger

	mu    sync.RWMutex
	token string
	user  *User
}

// New creates an empty session. Call Load to restore persisted state.
func New(kv KV, redirect Redirector, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if redirect == nil {
		redirect = RedirectFunc(func() {})
	}
	return &Session{kv: kv, redirect: redirect, log: log}
}

// Load restores the session from storage. A missing or malformed token
// leaves the session signed out; it is not an error.
func (s *Session) Load(ctx context.Context) error {
	token, err := s.kv.Get(ctx, KeyToken)
	if err != nil || token == "" {
		s.log.Debug("no stored session")
		return nil
	}

	claims, ok := DecodeClaims(token)
	if !ok {
		s.log.Warn("stored token could not be decoded, treating as signed out")
		return nil
	}

	role, _ := s.kv.Get(ctx, KeyRole)
	username, _ := s.kv.Get(ctx, KeyUsername)
	user := claims.user()
	if id, err := s.kv.Get(ctx, KeyUserID); err == nil {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n != 0 {
			user.ID = n
		}
	}
	user.Role = firstNonEmpty(role, user.Role, DefaultRole)
	user.Login = firstNonEmpty(user.Login, username)

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	s.log.Debug("session restored", "user_id", user.ID, "role", user.Role)
	return nil
}

// Login establishes a session from a freshly issued token. Either a
// decodable token or login info is enough.
func (s *Session) Login(ctx context.Context, token string, info Info) error {
	claims, decoded := DecodeClaims(token)
	if !decoded && info == (Info{}) {
		return fmt.Errorf("login: token is not a decodable JWT and no user info was returned")
	}

	user := claims.user()
	if info.UserID != 0 {
		user.ID = info.UserID
	}
	user.Login = firstNonEmpty(info.Username, user.Login)
	user.Role = firstNonEmpty(info.Role, user.Role, DefaultRole)

	if err := s.kv.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if info.Role != "" {
		if err := s.kv.Set(ctx, KeyRole, info.Role); err != nil {
			return fmt.Errorf("persist role: %w", err)
		}
	}
	if user.ID != 0 {
		if err := s.kv.Set(ctx, KeyUserID, strconv.FormatInt(user.ID, 10)); err != nil {
			return fmt.Errorf("persist user id: %w", err)
		}
	}
	if user.Login != "" {
		if err := s.kv.Set(ctx, KeyUsername, user.Login); err != nil {
			return fmt.Errorf("persist username: %w", err)
		}
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	s.log.Info("signed in", "user_id", user.ID, "login", user.Login, "role", user.Role)
	return nil
}

// Logout clears the in-memory and persisted credentials.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	var errs []error
	for _, key := range []string{KeyToken, KeyRole, KeyUserID, KeyUsername} {
		if err := s.kv.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Expire handles a rejected credential: the session is torn down and the
// user is sent to the login entry point. Each call redirects exactly once.
func (s *Session) Expire(ctx context.Context) {
	s.log.Warn("credentials rejected, signing out")
	if err := s.Logout(ctx); err != nil {
		s.log.Error("failed to clear stored credentials", "error", err)
	}
	s.redirect.RedirectToLogin()
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a user is signed in.
func (s *Session) Authenticated() bool {
	_, ok := s.User()
	return ok
}

// UserID returns the signed-in user's id, or ErrNoSession.
func (s *Session) UserID() (int64, error) {
	u, ok := s.User()
	if !ok || u.ID == 0 {
		return 0, ErrNoSession
	}
	return u.ID, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
