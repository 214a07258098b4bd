package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/amilimetros/internal/logging"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

// KeepAlive is the interval between comment frames on idle streams.
var KeepAlive = 25 * time.Second

// stream writes every snapshot of feed as a server-sent event named event
// until the client goes away.
func stream[T any](c echo.Context, event string, feed *watch.Feed[T]) error {
	ctx := c.Request().Context()
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	sub := feed.Subscribe(ctx)
	defer sub.Close()

	ping := time.NewTicker(KeepAlive)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-sub.C:
			if !ok {
				return nil
			}
			data, err := json.Marshal(v)
			if err != nil {
				logging.FromContext(ctx).Error("stream_encode_failed", "feed", feed.Key(), "error", err)
				return nil
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
				return nil
			}
			w.Flush()
		case <-ping.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
