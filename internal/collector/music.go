package collector

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/godbus/dbus/v5"
)

// DefaultMPDTimeout bounds a whole MPD round trip, connection included.
const DefaultMPDTimeout = 30 * time.Second

// MusicSource reports the track being played. Nothing playing is reported as
// ErrUnavailable.
type MusicSource interface {
	NowPlaying(ctx context.Context) (*Track, error)
}

// MPDSource queries a Music Player Daemon over its control protocol.
type MPDSource struct {
	network  string
	addr     string
	password string
	timeout  time.Duration

	// busy is set while a query goroutine is running, abandoned or not.
	busy atomic.Bool
}

// NewMPDSource creates a source for the daemon at addr ("host:port", or a
// socket path starting with "/").
func NewMPDSource(addr, password string, timeout time.Duration) *MPDSource {
	network := "tcp"
	if strings.HasPrefix(addr, "/") {
		network = "unix"
	}
	if timeout <= 0 {
		timeout = DefaultMPDTimeout
	}
	return &MPDSource{network: network, addr: addr, password: password, timeout: timeout}
}

type mpdResult struct {
	track *Track
	err   error
}

// NowPlaying connects, issues status and currentsong as one command list and
// disconnects. The client has no deadline of its own, so the query runs in a
// goroutine abandoned when ctx or the source timeout expires. At most one
// query runs at a time: while an abandoned one is still blocked on a wedged
// daemon, NowPlaying reports ErrUnavailable without dialing again.
func (s *MPDSource) NowPlaying(ctx context.Context) (*Track, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("mpd %s: previous query still running: %w", s.addr, ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ch := make(chan mpdResult, 1)
	go func() {
		t, err := s.query()
		s.busy.Store(false)
		ch <- mpdResult{track: t, err: err}
	}()

	select {
	case r := <-ch:
		return r.track, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("mpd %s: %w", s.addr, ctx.Err())
	}
}

func (s *MPDSource) query() (*Track, error) {
	client, err := mpd.DialAuthenticated(s.network, s.addr, s.password)
	if err != nil {
		return nil, fmt.Errorf("dial mpd %s: %w", s.addr, err)
	}
	defer client.Close()

	list := client.BeginCommandList()
	statusP := list.Status()
	songP := list.CurrentSong()
	if err := list.End(); err != nil {
		return nil, fmt.Errorf("mpd command list: %w", err)
	}
	status, err := statusP.Value()
	if err != nil {
		return nil, fmt.Errorf("mpd status: %w", err)
	}
	song, err := songP.Value()
	if err != nil {
		return nil, fmt.Errorf("mpd currentsong: %w", err)
	}
	return trackFromMPD(status, song)
}

func trackFromMPD(status, song mpd.Attrs) (*Track, error) {
	if status["state"] != "play" {
		return nil, fmt.Errorf("mpd state %q: %w", status["state"], ErrUnavailable)
	}
	t := &Track{Title: song["Title"], Artist: song["Artist"]}
	if t.Title == "" && song["file"] != "" {
		t.Title = path.Base(song["file"])
	}
	return t, nil
}

const (
	mprisPrefix      = "org.mpris.MediaPlayer2."
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
)

// MPRISSource queries a media player over the session bus. An empty player
// name picks the first MPRIS player found on the bus.
type MPRISSource struct {
	player string
	conn   func() (*dbus.Conn, error)
}

// NewMPRISSource creates a source for player, e.g. "spotify" or "mpv".
func NewMPRISSource(player string) *MPRISSource {
	return &MPRISSource{player: player, conn: dbus.SessionBus}
}

// NowPlaying returns the current track when the player is in Playing state.
func (s *MPRISSource) NowPlaying(ctx context.Context) (*Track, error) {
	conn, err := s.conn()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	name, err := s.busName(ctx, conn)
	if err != nil {
		return nil, err
	}
	obj := conn.Object(name, mprisPath)

	var status dbus.Variant
	if err := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, mprisPlayerIface, "PlaybackStatus").Store(&status); err != nil {
		return nil, fmt.Errorf("get PlaybackStatus of %s: %w", name, err)
	}
	if st, _ := status.Value().(string); st != "Playing" {
		return nil, fmt.Errorf("%s is %q: %w", name, st, ErrUnavailable)
	}

	var meta dbus.Variant
	if err := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, mprisPlayerIface, "Metadata").Store(&meta); err != nil {
		return nil, fmt.Errorf("get Metadata of %s: %w", name, err)
	}
	md, _ := meta.Value().(map[string]dbus.Variant)
	return trackFromMetadata(md), nil
}

func (s *MPRISSource) busName(ctx context.Context, conn *dbus.Conn) (string, error) {
	if s.player != "" {
		return mprisPrefix + s.player, nil
	}
	var names []string
	if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return "", fmt.Errorf("list bus names: %w", err)
	}
	for _, n := range names {
		if strings.HasPrefix(n, mprisPrefix) {
			return n, nil
		}
	}
	return "", fmt.Errorf("no mpris player: %w", ErrUnavailable)
}

// trackFromMetadata reads xesam:title and the first xesam:artist.
func trackFromMetadata(md map[string]dbus.Variant) *Track {
	t := &Track{}
	if v, ok := md["xesam:title"]; ok {
		t.Title, _ = v.Value().(string)
	}
	if v, ok := md["xesam:artist"]; ok {
		switch a := v.Value().(type) {
		case []string:
			t.Artist = strings.Join(a, ", ")
		case string:
			t.Artist = a
		}
	}
	return t
}
