//go:build linux

// Package device enumerates and reads Linux evdev input devices,
// translating raw kernel events into remap.Event batches for the
// engine: grab every configured keyboard and mouse and multiplex
// their streams.
package device

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"github.com/kbdkit/remapd/internal/remap"
)

// Source reads one evdev device and forwards every batch of events it
// produces between EV_SYN reports to the callback, tagged with the
// device's identity.
type Source struct {
	dev  *evdev.InputDevice
	info remap.InputDeviceInfo

	mu     sync.Mutex
	closed bool
}

// Open opens path exclusively (EVIOCGRAB) unless grab is false, and
// returns a Source ready to Run.
func Open(path string, grab bool) (*Source, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open device %s: %w", path, err)
	}

	name, _ := dev.Name()
	info := remap.InputDeviceInfo{Name: name, Path: path}
	if id, err := dev.InputID(); err == nil {
		info.Vendor = id.Vendor
		info.Product = id.Product
	}

	if grab {
		if err := dev.Grab(); err != nil {
			_ = dev.Close()
			return nil, fmt.Errorf("grab device %s: %w", path, err)
		}
	}

	return &Source{dev: dev, info: info}, nil
}

// Info returns the device's identity as seen by the engine's filters.
func (s *Source) Info() remap.InputDeviceInfo { return s.info }

// Run reads events until the device closes or an unrecoverable error
// occurs, delivering each EV_SYN-delimited batch to onBatch. Key and
// relative events are translated to remap.Event; EV_SYN only ends the
// batch and is not forwarded; everything else (EV_MSC, LED feedback)
// passes through as remap.EventOther so the output sink can replay it
// on the virtual device.
func (s *Source) Run(onBatch func([]remap.Event)) error {
	var batch []remap.Event
	for {
		ev, err := s.dev.ReadOne()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed || os.IsNotExist(err) || strings.Contains(err.Error(), "file already closed") {
				return nil
			}
			return fmt.Errorf("read device %s: %w", s.info.Path, err)
		}

		switch ev.Type {
		case evdev.EV_KEY:
			batch = append(batch, remap.Event{
				Kind:   remap.EventKey,
				Device: s.info,
				Key:    remap.KeyEvent{Key: remap.Key(ev.Code), Value: remap.Value(ev.Value)},
			})
		case evdev.EV_REL:
			batch = append(batch, remap.Event{
				Kind:   remap.EventRelative,
				Device: s.info,
				Rel:    remap.RelativeEvent{Code: uint16(ev.Code), Value: ev.Value},
			})
		case evdev.EV_SYN:
			if len(batch) > 0 {
				onBatch(batch)
				batch = nil
			}
			continue
		default:
			batch = append(batch, remap.Event{Kind: remap.EventOther, Device: s.info, Other: *ev})
		}
	}
}

// Close releases the exclusive grab (if held) and closes the device.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.dev.Close()
}

// Discover lists /dev/input/event* paths in numeric order, ready for
// callers to classify with IsKeyboardOrMouse.
func Discover() ([]string, error) {
	matches, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("glob /dev/input/event*: %w", err)
	}
	sortEventPaths(matches)
	return matches, nil
}

// sortEventPaths orders /dev/input/eventN paths by their numeric suffix
// rather than lexically, so event9 sorts before event10.
func sortEventPaths(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		ni, _ := strconv.Atoi(strings.TrimPrefix(paths[i], "/dev/input/event"))
		nj, _ := strconv.Atoi(strings.TrimPrefix(paths[j], "/dev/input/event"))
		return ni < nj
	})
}

// IsKeyboardOrMouse reports whether the device at path exposes letter
// keys (a keyboard) or a relative axis (a mouse), the two device
// classes remapd cares about — as opposed to power buttons and other
// EV_KEY-only devices without letter keys.
func IsKeyboardOrMouse(path string) (bool, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return false, err
	}
	defer dev.Close()

	for _, t := range dev.CapableTypes() {
		if t == evdev.EV_REL {
			return true, nil
		}
	}

	hasA, hasZ := false, false
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		switch remap.Key(code) {
		case remap.Key(30):
			hasA = true
		case remap.Key(44):
			hasZ = true
		}
	}
	return hasA && hasZ, nil
}
