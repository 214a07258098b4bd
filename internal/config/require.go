package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

var ErrMissing = errors.New("missing required env")

// Required reports every setting the server cannot start without.
func (c Config) Required() error {
	var missing []string
	if strings.TrimSpace(c.DatabaseURL) == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(c.JWTSecret) == 0 {
		missing = append(missing, "JWT_SECRET")
	}
	if c.SessionBackend == "redis" && strings.TrimSpace(c.RedisAddr) == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

// MustComplete stops the process when Required fails.
func MustComplete(c Config) {
	if err := c.Required(); err != nil {
		log.Fatalf("config: %v", err)
	}
}
