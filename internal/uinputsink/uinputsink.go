// Package uinputsink drains remap.Action batches onto a synthetic
// uinput output device and executes LaunchAction commands, the
// counterpart to internal/device's input side. Grounded on
// original_source's device.rs output_device() builder, using
// go-evdev's own uinput support rather than hand-rolled ioctls.
package uinputsink

import (
	"fmt"
	"os/exec"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/kbdkit/remapd/internal/remap"
)

// Sink owns the virtual output device and replays engine actions onto
// it in order.
type Sink struct {
	dev   *evdev.InputDevice
	sleep func(time.Duration)
}

// New creates a virtual keyboard+mouse advertising key codes 0-255 and
// the REL_X, REL_Y, REL_WHEEL and REL_HWHEEL axes. Key codes above 255,
// including mouse buttons and the disguised relative-event pseudo
// range, are not advertised.
func New(name string) (*Sink, error) {
	keys := make([]evdev.EvCode, 0, 256)
	for i := 0; i < 256; i++ {
		keys = append(keys, evdev.EvCode(i))
	}
	rels := []evdev.EvCode{evdev.EvCode(evdev.REL_X), evdev.EvCode(evdev.REL_Y), evdev.EvCode(evdev.REL_WHEEL), evdev.EvCode(evdev.REL_HWHEEL)}

	dev, err := evdev.CreateDevice(name, evdev.InputID{
		BusType: evdev.BUS_USB,
		Vendor:  0x4b6b, // "Kk" — kbdkit
		Product: 0x0001,
		Version: 1,
	}, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keys,
		evdev.EV_REL: rels,
	})
	if err != nil {
		return nil, fmt.Errorf("create uinput device: %w", err)
	}
	return &Sink{dev: dev, sleep: time.Sleep}, nil
}

// Close destroys the virtual device.
func (s *Sink) Close() error { return s.dev.Close() }

// Dispatch replays one batch of engine actions in order, honoring
// Delay actions by sleeping (this is the one place in the system where
// a block is correct: the engine itself never suspends, while Dispatch
// blocks whichever goroutine calls it).
func (s *Sink) Dispatch(actions []remap.Action) error {
	for _, a := range actions {
		if err := s.dispatchOne(a); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) dispatchOne(a remap.Action) error {
	switch a.Kind {
	case remap.ActionKeyEvent:
		if err := s.write(evdev.EV_KEY, evdev.EvCode(a.Key.Key), int32(a.Key.Value)); err != nil {
			return err
		}
		return s.syn()

	case remap.ActionRelativeEvent:
		if err := s.write(evdev.EV_REL, evdev.EvCode(a.Rel.Code), a.Rel.Value); err != nil {
			return err
		}
		return s.syn()

	case remap.ActionMouseMovementEventCollection:
		for _, rel := range a.Mouse {
			if err := s.write(evdev.EV_REL, evdev.EvCode(rel.Code), rel.Value); err != nil {
				return err
			}
		}
		return s.syn()

	case remap.ActionInputEvent:
		return s.dev.WriteOne(&a.Other)

	case remap.ActionCommand:
		return spawn(a.Command)

	case remap.ActionDelay:
		s.sleep(time.Duration(a.Delay) * time.Millisecond)
		return nil

	default:
		return fmt.Errorf("uinputsink: unknown action kind %v", a.Kind)
	}
}

func (s *Sink) write(t evdev.EvType, code evdev.EvCode, value int32) error {
	return s.dev.WriteOne(&evdev.InputEvent{Type: t, Code: code, Value: value})
}

func (s *Sink) syn() error {
	return s.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.EvCode(evdev.SYN_REPORT), Value: 0})
}

// spawn runs a LaunchAction's command as a detached background
// process, reaping it without blocking the caller — translating
// original_source's action_dispatcher.rs SIGCHLD handling into Go's
// idiomatic fire-and-forget goroutine.
func spawn(command []string) error {
	if len(command) == 0 {
		return nil
	}
	cmd := exec.Command(command[0], command[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %v: %w", command, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
