//go:build !unix

package autolock

import "context"

// WatchSignals is a no-op on platforms without job control.
func (m *Monitor) WatchSignals(ctx context.Context) {}
