// Package dbusclient implements engine.WMClient against a GNOME Shell
// session bus, grounded on original_source's client/gnome_client.rs
// (which drives the same "Eval" call via zbus) but using godbus/dbus/v5.
package dbusclient

import (
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	shellFocusedWMClass = `
		const actor = global.get_window_actors().find(a=>a.meta_window.has_focus()===true)
		actor && actor.get_meta_window().get_wm_class()
	`
	shellFocusedTitle = `
		const actor = global.get_window_actors().find(a=>a.meta_window.has_focus()===true)
		actor && actor.get_meta_window().get_title()
	`
)

// Client talks to org.gnome.Shell over the session bus to resolve the
// focused window's WM class (application) and title. It satisfies
// engine.WMClient.
type Client struct {
	mu   sync.Mutex
	conn *dbus.Conn
}

// New returns a Client; the session bus connection is opened lazily on
// first use so construction never blocks or fails.
func New() *Client { return &Client{} }

func (c *Client) connect() *dbus.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil
	}
	c.conn = conn
	return conn
}

func (c *Client) eval(code string) (string, bool) {
	conn := c.connect()
	if conn == nil {
		return "", false
	}

	obj := conn.Object("org.gnome.Shell", dbus.ObjectPath("/org/gnome/Shell"))
	call := obj.Call("org.gnome.Shell.Eval", 0, code)
	if call.Err != nil {
		return "", false
	}

	var ok bool
	var result string
	if err := call.Store(&ok, &result); err != nil || !ok {
		return "", false
	}
	return result, true
}

// CurrentApplication returns the focused window's WM class.
func (c *Client) CurrentApplication() (string, bool) { return c.eval(shellFocusedWMClass) }

// CurrentWindow returns the focused window's title.
func (c *Client) CurrentWindow() (string, bool) { return c.eval(shellFocusedTitle) }

// Run is not backed by a Shell "spawn" call here; the output sink
// always forks the process itself instead.
func (c *Client) Run([]string) (bool, error) { return false, nil }
