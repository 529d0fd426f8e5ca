package interview

import (
	"context"
	"log/slog"
	"time"
)

const reaperInterval = time.Minute

// StartReaper runs a background goroutine that periodically discards
// sessions with no candidate activity for longer than ttl. HTTP clients
// that silently abandon an interview would otherwise pin memory forever.
func StartReaper(ctx context.Context, registry *Registry, ttl time.Duration) {
	ticker := time.NewTicker(reaperInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session reaper started", "interval", reaperInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				registry.DiscardIdle(ttl)
			case <-ctx.Done():
				slog.Info("Session reaper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
