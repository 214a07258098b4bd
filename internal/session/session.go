// Package session keeps per-session key/value state: who is logged in and
// the profile fields shown without a store round trip.
package session

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

const (
	KeyLoggedIn  = "is_logged_in"
	KeyUserID    = "user_id"
	KeyIsAdmin   = "is_admin"
	KeyUserName  = "user_name"
	KeyUserEmail = "user_email"
	KeyUserPhone = "user_phone"
)

// Backend persists raw values. Put must write all values in one batch.
type Backend interface {
	GetAll(ctx context.Context, sid string) (map[string]string, error)
	Put(ctx context.Context, sid string, values map[string]string) error
	Delete(ctx context.Context, sid string) error
}

type State struct {
	LoggedIn  bool
	UserID    uint
	IsAdmin   bool
	UserName  string
	UserEmail string
	UserPhone string
}

func (s State) values() map[string]string {
	return map[string]string{
		KeyLoggedIn:  strconv.FormatBool(s.LoggedIn),
		KeyUserID:    strconv.FormatUint(uint64(s.UserID), 10),
		KeyIsAdmin:   strconv.FormatBool(s.IsAdmin),
		KeyUserName:  s.UserName,
		KeyUserEmail: s.UserEmail,
		KeyUserPhone: s.UserPhone,
	}
}

// Store reads and writes typed session values over a Backend. Missing keys
// read as their defaults.
type Store struct {
	backend Backend
}

func NewStore(b Backend) *Store {
	return &Store{backend: b}
}

func NewID() string {
	return uuid.NewString()
}

func (s *Store) Load(ctx context.Context, sid string) (State, error) {
	v, err := s.backend.GetAll(ctx, sid)
	if err != nil {
		return State{}, err
	}
	id, _ := strconv.ParseUint(v[KeyUserID], 10, 64)
	return State{
		LoggedIn:  parseBool(v[KeyLoggedIn], false),
		UserID:    uint(id),
		IsAdmin:   parseBool(v[KeyIsAdmin], false),
		UserName:  v[KeyUserName],
		UserEmail: v[KeyUserEmail],
		UserPhone: v[KeyUserPhone],
	}, nil
}

// Login records st with the logged-in flag set.
func (s *Store) Login(ctx context.Context, sid string, st State) error {
	st.LoggedIn = true
	return s.backend.Put(ctx, sid, st.values())
}

// Logout resets all six keys to false, 0 and empty in one write.
func (s *Store) Logout(ctx context.Context, sid string) error {
	return s.backend.Put(ctx, sid, State{}.values())
}

// Forget drops every key of the session.
func (s *Store) Forget(ctx context.Context, sid string) error {
	return s.backend.Delete(ctx, sid)
}

// UpdateProfile rewrites the cached name, email and phone.
func (s *Store) UpdateProfile(ctx context.Context, sid, name, email, phone string) error {
	return s.backend.Put(ctx, sid, map[string]string{
		KeyUserName:  name,
		KeyUserEmail: email,
		KeyUserPhone: phone,
	})
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}
