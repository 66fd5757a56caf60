package main

import (
	"context"
	"os/signal"
	"syscall"
)

// contextWithSignals returns a context canceled on SIGINT/SIGTERM, the same
// graceful-shutdown signal set the teacher's subprocess-management helpers
// listen for.
func contextWithSignals() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
