package repo

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/amilimetros/internal/metrics"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrEmailTaken         = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password does not match")
	ErrStore              = errors.New("store failure")
)

// wrap tags err with op. Missing rows become ErrNotFound, errors that already
// carry one of the sentinels pass through, anything else is a store fault.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrWrongPassword),
		errors.Is(err, ErrStore):
		return err
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
	}
}

// base is embedded by every repository.
type base struct {
	name string
	hub  *watch.Hub
}

func newBase(name string, hub *watch.Hub) base {
	if hub == nil {
		hub = watch.NewHub(0, nil)
	}
	return base{name: name, hub: hub}
}

func (b base) done(op string, err error) error {
	err = wrap(b.name+"."+op, err)
	metrics.ObserveRepo(b.name, op, err)
	return err
}

func (b base) notify(tables ...string) {
	b.hub.Notify(tables...)
}
