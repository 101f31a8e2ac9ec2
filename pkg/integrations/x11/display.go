package x11

import (
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"
)

// propertyLength is the number of 32-bit units requested for string
// properties. Longer titles are truncated.
const propertyLength = 256

// display is the subset of the X protocol the probe needs. It is scoped to a
// single probe call and must be closed by the caller.
type display interface {
	focusedWindow() xproto.Window
	topLevel(w xproto.Window) xproto.Window
	windowTitle(w xproto.Window) string
	windowClass(w xproto.Window) string
	idleMillis() (uint32, error)
	close()
}

type xgbDisplay struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

func dialXGB() (display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}

	d := &xgbDisplay{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom),
	}
	for _, name := range []string{"_NET_WM_NAME", "UTF8_STRING"} {
		reply, err := xproto.InternAtom(conn, true, uint16(len(name)), name).Reply()
		if err != nil || reply == nil {
			continue
		}
		d.atoms[name] = reply.Atom
	}
	return d, nil
}

func (d *xgbDisplay) focusedWindow() xproto.Window {
	reply, err := xproto.GetInputFocus(d.conn).Reply()
	if err != nil || reply == nil {
		return 0
	}
	switch reply.Focus {
	case xproto.InputFocusNone, xproto.InputFocusPointerRoot, d.root:
		return 0
	}
	return reply.Focus
}

// topLevel walks up the tree until the direct child of the root window.
func (d *xgbDisplay) topLevel(w xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(d.conn, w).Reply()
		if err != nil || reply == nil || reply.Parent == d.root || reply.Parent == 0 {
			return w
		}
		w = reply.Parent
	}
}

func (d *xgbDisplay) property(w xproto.Window, atom, atomType xproto.Atom) []byte {
	if atom == 0 {
		return nil
	}
	reply, err := xproto.GetProperty(d.conn, false, w, atom, atomType, 0, propertyLength).Reply()
	if err != nil || reply == nil {
		return nil
	}
	return reply.Value
}

func (d *xgbDisplay) windowTitle(w xproto.Window) string {
	if data := d.property(w, d.atoms["_NET_WM_NAME"], d.atoms["UTF8_STRING"]); len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	return strings.TrimRight(string(d.property(w, xproto.AtomWmName, xproto.AtomString)), "\x00")
}

func (d *xgbDisplay) windowClass(w xproto.Window) string {
	return parseWMClass(d.property(w, xproto.AtomWmClass, xproto.AtomString))
}

func (d *xgbDisplay) idleMillis() (uint32, error) {
	if err := screensaver.Init(d.conn); err != nil {
		return 0, err
	}
	reply, err := screensaver.QueryInfo(d.conn, xproto.Drawable(d.root)).Reply()
	if err != nil {
		return 0, err
	}
	return reply.MsSinceUserInput, nil
}

func (d *xgbDisplay) close() {
	d.conn.Close()
}

// parseWMClass returns the class part of a WM_CLASS value
// ("instance\x00class\x00"), or the instance when no class is set.
func parseWMClass(data []byte) string {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	for i := len(parts) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(parts[i]); s != "" {
			return s
		}
	}
	return ""
}
