//go:build !linux

package capture

import (
	"context"
	"log/slog"
)

// Monitor is a no-op outside Linux.
type Monitor struct{}

// NewMonitor returns a monitor that never fires.
func NewMonitor(*slog.Logger, func(Event)) *Monitor { return &Monitor{} }

// Start does nothing.
func (m *Monitor) Start(context.Context) error { return nil }

// Stop does nothing.
func (m *Monitor) Stop() {}
