package collector

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSleepMonitor_Handle(t *testing.T) {
	tests := []struct {
		name string
		sig  *dbus.Signal
		want bool
	}{
		{name: "resume", sig: &dbus.Signal{Name: prepareForSleep, Body: []interface{}{false}}, want: true},
		{name: "suspend", sig: &dbus.Signal{Name: prepareForSleep, Body: []interface{}{true}}},
		{name: "other signal", sig: &dbus.Signal{Name: "org.freedesktop.login1.Manager.SessionNew", Body: []interface{}{false}}},
		{name: "empty body", sig: &dbus.Signal{Name: prepareForSleep}},
		{name: "wrong body type", sig: &dbus.Signal{Name: prepareForSleep, Body: []interface{}{"false"}}},
		{name: "nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newSleepMonitor(testLogger())
			m.handle(tt.sig)

			select {
			case <-m.Resumed():
				if !tt.want {
					t.Fatal("Resumed() fired, want no resume")
				}
			default:
				if tt.want {
					t.Fatal("Resumed() did not fire")
				}
			}
		})
	}
}

func TestSleepMonitor_CoalescesResumes(t *testing.T) {
	m := newSleepMonitor(testLogger())
	woke := &dbus.Signal{Name: prepareForSleep, Body: []interface{}{false}}
	m.handle(woke)
	m.handle(woke)

	<-m.Resumed()
	select {
	case <-m.Resumed():
		t.Fatal("second resume was queued, want it coalesced")
	default:
	}
}

func TestSleepMonitor_Listen(t *testing.T) {
	m := newSleepMonitor(testLogger())
	go m.listen()
	defer m.Close()

	m.signals <- &dbus.Signal{Name: prepareForSleep, Body: []interface{}{false}}

	select {
	case <-m.Resumed():
	case <-time.After(2 * time.Second):
		t.Fatal("Resumed() did not fire after a wake signal")
	}
}
