package shutdown

import (
	"context"
	"os/signal"
)

// ExitCode is returned when playback is cut short by a signal.
const ExitCode = 130

// Context returns a copy of parent that is cancelled on the first interrupt
// or termination signal. stop releases the signal handler.
func Context(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}
