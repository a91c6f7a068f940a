package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const heartbeatInterval = 15 * time.Second

// stream serves a live query as server-sent events. Every frame is a full
// snapshot named "snapshot". An error before the first frame is answered as
// a normal JSON error.
func stream[T any](h HandlerSet, c *gin.Context, watch func(ctx context.Context, emit func(T) error) error) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	frames := make(chan []byte)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, func(v T) error {
			raw, err := json.Marshal(v)
			if err != nil {
				return err
			}
			select {
			case frames <- raw:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	w := c.Writer
	started := false
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-done:
			if err == nil || errors.Is(err, context.Canceled) {
				return
			}
			if !started {
				h.respondError(c, err)
				return
			}
			h.log.Warn().Err(err).Str("route", c.FullPath()).Msg("live query stopped")
			_, _ = fmt.Fprint(w, "event: error\ndata: {\"error\":\"stream_failed\"}\n\n")
			w.Flush()
			return
		case <-heartbeat.C:
			if started {
				_, _ = fmt.Fprint(w, ": ping\n\n")
				w.Flush()
			}
		case raw := <-frames:
			if !started {
				h.startStream(c)
				started = true
			}
			_, _ = fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", raw)
			w.Flush()
		}
	}
}

func (h HandlerSet) startStream(c *gin.Context) {
	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	// The server write timeout would otherwise cut long-lived streams.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		h.log.Debug().Err(err).Msg("clear write deadline")
	}
	c.Status(http.StatusOK)
}
