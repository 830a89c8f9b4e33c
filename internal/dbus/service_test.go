package dbus

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"log/slog"
	"testing"

	"github.com/godbus/dbus/v5/introspect"

	"github.com/cptspacemanspiff/dwmstatus/internal/statusline"
)

type staticSnapshot statusline.Snapshot

func (s staticSnapshot) Snapshot() statusline.Snapshot { return statusline.Snapshot(s) }

func TestService_GetStatusLine(t *testing.T) {
	svc := NewService(staticSnapshot{Line: "  ^c#FF0000^MEM 60%"})

	line, dbusErr := svc.GetStatusLine()
	if dbusErr != nil {
		t.Fatalf("GetStatusLine() error = %v", dbusErr)
	}
	if line != "  ^c#FF0000^MEM 60%" {
		t.Fatalf("GetStatusLine() = %q", line)
	}
}

func TestService_GetSegmentsJSONShape(t *testing.T) {
	tests := []struct {
		name string
		snap staticSnapshot
		want []string
	}{
		{name: "before first tick", snap: staticSnapshot{}, want: []string{}},
		{name: "rendered", snap: staticSnapshot{Segments: []string{"cpu", "memory", "date"}}, want: []string{"cpu", "memory", "date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, dbusErr := NewService(tt.snap).GetSegments()
			if dbusErr != nil {
				t.Fatalf("GetSegments() error = %v", dbusErr)
			}
			var got []string
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("unmarshal segments JSON %q: %v", out, err)
			}
			if got == nil {
				t.Fatalf("GetSegments() = %s, want a JSON array", out)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("GetSegments() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("GetSegments() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestService_FollowsAssembler(t *testing.T) {
	seg := statusline.Segment{Name: "date", Render: func(context.Context) (string, error) { return "Tue", nil }}
	asm := statusline.NewAssembler([]statusline.Segment{seg}, statusline.Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := NewService(asm)

	asm.Tick(context.Background())

	if line, _ := svc.GetStatusLine(); line != "Tue" {
		t.Fatalf("GetStatusLine() = %q, want %q", line, "Tue")
	}
	if segs, _ := svc.GetSegments(); segs != `["date"]` {
		t.Fatalf("GetSegments() = %s", segs)
	}
}

func TestIntrospectXML(t *testing.T) {
	var node introspect.Node
	if err := xml.Unmarshal([]byte(introspectXML), &node); err != nil {
		t.Fatalf("parse introspection XML: %v", err)
	}

	var iface *introspect.Interface
	for i := range node.Interfaces {
		if node.Interfaces[i].Name == ifaceName {
			iface = &node.Interfaces[i]
		}
	}
	if iface == nil {
		t.Fatalf("introspection XML has no %s interface", ifaceName)
	}

	methods := map[string]bool{}
	for _, m := range iface.Methods {
		methods[m.Name] = true
	}
	for _, name := range []string{"GetStatusLine", "GetSegments"} {
		if !methods[name] {
			t.Fatalf("introspection XML missing method %s", name)
		}
	}
}
