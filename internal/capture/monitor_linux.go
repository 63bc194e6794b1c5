//go:build linux

package capture

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"bookdetector/internal/logging"
)

// Monitor follows camera hotplug events on the udev netlink socket.
type Monitor struct {
	logger  *slog.Logger
	handler func(Event)

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// NewMonitor returns a monitor that calls handler for every camera add or
// remove event.
func NewMonitor(logger *slog.Logger, handler func(Event)) *Monitor {
	return &Monitor{
		logger:  logging.NewComponentLogger(logger, "camera-monitor"),
		handler: handler,
	}
}

// Start connects to the netlink socket and begins dispatching events. A
// socket failure is logged and treated as "no hotplug support".
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		logging.WarnWithContext(m.logger, "failed to connect to netlink socket; camera hotplug disabled", "camera_monitor_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check access to the udev netlink socket"),
			logging.String(logging.FieldImpact, "newly attached cameras need a restart to be used"),
		)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true
	go m.loop(ctx, conn, m.quit)

	m.logger.Info("camera monitor started",
		logging.String(logging.FieldEventType, "camera_monitor_started"),
	)
	return nil
}

// Stop closes the netlink socket.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	close(m.quit)
	m.quit = nil
	_ = m.conn.Close()
	m.conn = nil
	m.running = false
}

func (m *Monitor) loop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error, 1)
	monitorQuit := conn.Monitor(queue, errs, videoMatcher("add|remove"))

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			m.Stop()
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			event := Event{
				Action: string(uevent.Action),
				Camera: Camera{Device: devicePath(uevent.Env["DEVNAME"])},
			}
			if event.Camera.Device == "" {
				continue
			}
			m.logger.Info("camera hotplug event",
				logging.String(logging.FieldEventType, "camera_"+event.Action),
				logging.String("device", event.Camera.Device),
			)
			if m.handler != nil {
				m.handler(event)
			}
		case err := <-errs:
			logging.WarnWithContext(m.logger, "camera monitor error", "camera_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "camera hotplug events may be missed"),
			)
		}
	}
}
