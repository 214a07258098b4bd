package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/amilimetros/internal/events"
	"github.com/Skotchmaster/amilimetros/internal/logging"
)

var (
	ErrValidation = errors.New("validation")
	ErrForbidden  = errors.New("forbidden")
)

// publish sends ev and only logs a failure; events never fail the request.
func publish(ctx context.Context, p events.Publisher, topic, key string, ev any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "error", err)
	}
}
