// Package xcmd provides process lifecycle helpers shared by the daemon
// entry point.
package xcmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Interrupted wraps the os.Signal that ended a WaitInterrupted call.
type Interrupted struct {
	os.Signal
}

func (m Interrupted) Error() string {
	return m.String()
}

// WaitInterrupted blocks until SIGINT or SIGTERM arrives or ctx is
// cancelled, per spec.md §4.8's shutdown trigger.
func WaitInterrupted(ctx context.Context) error {
	ch := make(chan os.Signal, 1)

	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)

	select {
	case v := <-ch:
		return Interrupted{Signal: v}
	case <-ctx.Done():
		return ctx.Err()
	}
}
