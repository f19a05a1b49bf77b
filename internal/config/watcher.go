//go:build linux

package config

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Watcher delivers a signal whenever the watched config file is
// replaced (IN_CLOSE_WRITE or IN_MOVE_SELF — editors commonly save by
// writing a new file and renaming it over the original), a
// supplemental feature so the caller can hot-reload without a restart.
type Watcher struct {
	fd, wd int
	path   string
}

// NewWatcher opens an inotify instance watching path directly for
// IN_CLOSE_WRITE (a normal save) and IN_MOVE_SELF/IN_DELETE_SELF (an
// editor replacing the file by renaming a temp file over it, which
// moves the original inode out from under the watch).
func NewWatcher(path string) (*Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify_init: %w", err)
	}
	wd, err := unix.InotifyAddWatch(fd, path, unix.IN_CLOSE_WRITE|unix.IN_MOVE_SELF|unix.IN_DELETE_SELF)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("inotify_add_watch %s: %w", path, err)
	}
	return &Watcher{fd: fd, wd: wd, path: path}, nil
}

// Wait blocks until the config file changes, returning nil once an
// event is observed (the caller is expected to re-run Load).
func (w *Watcher) Wait() error {
	buf := make([]byte, unix.SizeofInotifyEvent+unix.NAME_MAX+1)
	_, err := unix.Read(w.fd, buf)
	if err != nil {
		return fmt.Errorf("read inotify events: %w", err)
	}
	return nil
}

// Close releases the inotify instance.
func (w *Watcher) Close() error {
	return unix.Close(w.fd)
}
