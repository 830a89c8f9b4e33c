package collector

import (
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const prepareForSleep = "org.freedesktop.login1.Manager.PrepareForSleep"

// SleepMonitor listens for systemd-logind PrepareForSleep signals and reports
// every resume on a channel, so the daemon can take a new CPU baseline and
// redraw the bar without waiting for the next tick.
type SleepMonitor struct {
	conn    *dbus.Conn
	signals chan *dbus.Signal
	done    chan struct{}
	resumed chan struct{}
	log     *slog.Logger
}

// NewSleepMonitor creates a sleep monitor connected to the system bus.
func NewSleepMonitor(logger *slog.Logger) (*SleepMonitor, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.login1.Manager"),
		dbus.WithMatchMember("PrepareForSleep"),
	)
	if err != nil {
		return nil, err
	}

	m := newSleepMonitor(logger)
	m.conn = conn
	conn.Signal(m.signals)
	go m.listen()
	return m, nil
}

func newSleepMonitor(logger *slog.Logger) *SleepMonitor {
	return &SleepMonitor{
		signals: make(chan *dbus.Signal, 16),
		done:    make(chan struct{}),
		resumed: make(chan struct{}, 1),
		log:     logger,
	}
}

// Resumed returns a channel that receives a value each time the system wakes.
func (m *SleepMonitor) Resumed() <-chan struct{} {
	return m.resumed
}

// Close stops the monitor.
func (m *SleepMonitor) Close() {
	close(m.done)
}

func (m *SleepMonitor) listen() {
	if m.conn != nil {
		defer m.conn.RemoveSignal(m.signals)
	}
	for {
		select {
		case sig := <-m.signals:
			m.handle(sig)
		case <-m.done:
			return
		}
	}
}

func (m *SleepMonitor) handle(sig *dbus.Signal) {
	if sig == nil || sig.Name != prepareForSleep || len(sig.Body) < 1 {
		return
	}
	going, ok := sig.Body[0].(bool)
	if !ok {
		return
	}
	if going {
		m.log.Info("system going to sleep")
		return
	}
	m.log.Info("system woke up")
	select {
	case m.resumed <- struct{}{}:
	default:
	}
}
