// Package sink delivers finished status lines to the window manager.
package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Publisher accepts one status line per tick.
type Publisher interface {
	Publish(line string) error
}

// X11 sets WM_NAME on the root window, which dwm draws as its status text.
type X11 struct {
	conn *xgb.Conn
	root xproto.Window
	utf8 xproto.Atom
}

// OpenX11 connects to display, or to $DISPLAY when display is empty.
func OpenX11(display string) (*X11, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("open display %q: %w", display, err)
	}

	root := xproto.Setup(conn).DefaultScreen(conn).Root

	const utf8Name = "UTF8_STRING"
	reply, err := xproto.InternAtom(conn, false, uint16(len(utf8Name)), utf8Name).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("intern %s: %w", utf8Name, err)
	}

	return &X11{conn: conn, root: root, utf8: reply.Atom}, nil
}

// Publish replaces the root window name with line and waits for the server
// to acknowledge the request.
func (x *X11) Publish(line string) error {
	err := xproto.ChangePropertyChecked(x.conn, xproto.PropModeReplace, x.root,
		xproto.AtomWmName, x.utf8, 8, uint32(len(line)), []byte(line)).Check()
	if err != nil {
		return fmt.Errorf("set WM_NAME: %w", err)
	}
	return nil
}

// Close disconnects from the display.
func (x *X11) Close() {
	x.conn.Close()
}

// Debug forwards lines to Next and echoes each one to Out.
type Debug struct {
	Next Publisher
	Out  io.Writer

	mu sync.Mutex
}

// Publish echoes line as "STATUS: <line>" even when Next fails, then returns
// the error from Next.
func (d *Debug) Publish(line string) error {
	var err error
	if d.Next != nil {
		err = d.Next.Publish(line)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, werr := fmt.Fprintf(d.Out, "STATUS: %s\n", line); werr != nil && err == nil {
		err = fmt.Errorf("echo status: %w", werr)
	}
	return err
}
