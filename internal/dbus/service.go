package dbus

import (
	"encoding/json"
	"fmt"

	godbus "github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/cptspacemanspiff/dwmstatus/internal/statusline"
)

const (
	busName   = "org.dwmstatus.Status"
	objPath   = "/org/dwmstatus/Status"
	ifaceName = "org.dwmstatus.Status"
)

const introspectXML = `
<node>
  <interface name="` + ifaceName + `">
    <method name="GetStatusLine">
      <arg direction="out" type="s" name="line"/>
    </method>
    <method name="GetSegments">
      <arg direction="out" type="s" name="json"/>
    </method>
  </interface>
` + introspect.IntrospectDataString + `
</node>`

// SnapshotSource provides the outcome of the latest tick.
type SnapshotSource interface {
	Snapshot() statusline.Snapshot
}

// Service exposes the current status line over D-Bus.
type Service struct {
	src SnapshotSource
}

// NewService creates a new D-Bus service.
func NewService(src SnapshotSource) *Service {
	return &Service{src: src}
}

// Export registers the service on the session bus.
func (s *Service) Export() (*godbus.Conn, error) {
	conn, err := godbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	if err := conn.Export(s, objPath, ifaceName); err != nil {
		return nil, fmt.Errorf("export %s: %w", ifaceName, err)
	}
	if err := conn.Export(introspect.Introspectable(introspectXML), objPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return nil, fmt.Errorf("export introspection: %w", err)
	}

	reply, err := conn.RequestName(busName, godbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, fmt.Errorf("request name: %w", err)
	}
	if reply != godbus.RequestNameReplyPrimaryOwner {
		return nil, fmt.Errorf("name %s already taken", busName)
	}

	return conn, nil
}

// GetStatusLine returns the line last published, padding included.
func (s *Service) GetStatusLine() (string, *godbus.Error) {
	return s.src.Snapshot().Line, nil
}

// GetSegments returns the names of the segments shown in the last line as a
// JSON array.
func (s *Service) GetSegments() (string, *godbus.Error) {
	segments := s.src.Snapshot().Segments
	if segments == nil {
		segments = []string{}
	}
	data, err := json.Marshal(segments)
	if err != nil {
		return "", godbus.MakeFailedError(err)
	}
	return string(data), nil
}
