//go:build unix

package autolock

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// WatchSignals maps job control signals to lifecycle states until ctx is
// done: SIGTSTP is Background and SIGCONT is Active. Background is
// recorded before the process stops itself, so Ctrl-Z still suspends the
// terminal client and the suspension counts towards the timeout.
func (m *Monitor) WatchSignals(ctx context.Context) {
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, unix.SIGTSTP, unix.SIGCONT)

	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-sigs:
				switch s {
				case unix.SIGTSTP:
					m.Transition(Background)
					_ = unix.Kill(unix.Getpid(), unix.SIGSTOP)
				case unix.SIGCONT:
					m.Transition(Active)
				}
			}
		}
	}()
}
