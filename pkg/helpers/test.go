package helpers

import (
	"context"
	"log/slog"
	"time"

	"github.com/GregMSThompson/finance-sync/pkg/logger"
)

// TestCtx returns a context carrying a discarding logger.
func TestCtx() context.Context {
	log := slog.New(logger.NewTestHandler(slog.LevelDebug))
	return logger.ToContext(context.Background(), log)
}

// WaitFor polls cond every 10ms for up to two seconds and reports whether it
// ever held.
func WaitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
}
