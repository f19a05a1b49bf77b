// Command remapd is the input-remapper daemon: it grabs configured
// evdev input devices, runs their events through internal/engine, and
// replays the resulting actions on a synthetic uinput device. Dispatches
// os.Args[1] subcommands before flag.Parse(), builds a *log.Logger from
// a -debug flag, and runs a tea.Program for the optional status view.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kbdkit/remapd/internal/config"
	"github.com/kbdkit/remapd/internal/device"
	"github.com/kbdkit/remapd/internal/engine"
	"github.com/kbdkit/remapd/internal/remap"
	"github.com/kbdkit/remapd/internal/tui"
	"github.com/kbdkit/remapd/internal/uinputsink"
	"github.com/kbdkit/remapd/internal/wm"
	"github.com/kbdkit/remapd/internal/wm/dbusclient"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "devices":
			runDevices()
			return
		case "check":
			runCheck(os.Args[2:])
			return
		}
	}
	runDaemon()
}

// runDevices lists candidate evdev devices by scanning and classifying
// each /dev/input/event* node.
func runDevices() {
	paths, err := device.Discover()
	if err != nil {
		log.Fatalf("discover devices: %v", err)
	}
	for _, p := range paths {
		ok, err := device.IsKeyboardOrMouse(p)
		if err != nil {
			fmt.Printf("%s\t(unreadable: %v)\n", p, err)
			continue
		}
		if !ok {
			continue
		}
		src, err := device.Open(p, false)
		if err != nil {
			fmt.Printf("%s\t(open failed: %v)\n", p, err)
			continue
		}
		info := src.Info()
		src.Close()
		fmt.Printf("%s\t%s\n", p, info.Name)
	}
}

// runCheck parses and validates a config file, printing a human-facing
// summary of what was found, with a nonzero exit on failure.
func runCheck(args []string) {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("FAILED to parse %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("config:           %s\n", path)
	fmt.Printf("generation id:    %s\n", cfg.GenerationID)
	fmt.Printf("default mode:     %s\n", cfg.DefaultMode)
	fmt.Printf("wheel disguising: %v\n", cfg.EnableWheel)
	fmt.Printf("modmap entries:   %d\n", len(cfg.Modmaps))
	keymapCount := 0
	for _, entries := range cfg.KeymapTable {
		keymapCount += len(entries)
	}
	fmt.Printf("keymap entries:   %d\n", keymapCount)
	fmt.Println("OK")
}

func runDaemon() {
	debug := flag.Bool("debug", false, "enable debug logging to stderr")
	useTUI := flag.Bool("tui", false, "show a status view instead of running silently")
	noGrab := flag.Bool("no-grab", false, "open input devices without an exclusive grab (for testing)")
	devicesFlag := flag.String("devices", "", "comma-separated /dev/input/eventN paths to remap (default: autodetect keyboards/mice)")
	outputName := flag.String("output-name", "remapd virtual input", "name of the synthetic uinput output device")
	flag.Parse()

	var dbg *log.Logger
	if *debug {
		dbg = log.New(os.Stderr, "[DEBUG] ", log.Ltime|log.Lmicroseconds)
	} else {
		dbg = log.New(io.Discard, "", 0)
	}

	cfgPath := config.DefaultPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	dbg.Printf("config loaded: generation=%s mode=%s", cfg.GenerationID, cfg.DefaultMode)

	sink, err := uinputsink.New(*outputName)
	if err != nil {
		log.Fatalf("create uinput output device: %v", err)
	}
	defer sink.Close()

	paths := resolveDevicePaths(*devicesFlag)
	if len(paths) == 0 {
		log.Fatalf("no input devices found (pass -devices or run 'remapd devices' to list candidates)")
	}

	sources := make([]*device.Source, 0, len(paths))
	for _, p := range paths {
		src, err := device.Open(p, !*noGrab)
		if err != nil {
			dbg.Printf("device: skipping %s: %v", p, err)
			continue
		}
		dbg.Printf("device: grabbed %s (%s)", p, src.Info().Name)
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		log.Fatalf("failed to open any of the requested input devices")
	}
	defer func() {
		for _, s := range sources {
			s.Close()
		}
	}()

	wmClient := selectWMClient(dbg)
	timer := newAfterFuncTimer()
	eng := engine.New(cfg.DefaultMode, timer, wmClient, engine.WithLogger(dbg))

	type batch struct {
		device remap.InputDeviceInfo
		events []remap.Event
	}
	batches := make(chan batch, 64)

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(s *device.Source) {
			defer wg.Done()
			err := s.Run(func(events []remap.Event) {
				batches <- batch{device: s.Info(), events: events}
			})
			if err != nil {
				dbg.Printf("device: %s stopped: %v", s.Info().Path, err)
			}
		}(src)
	}

	var program *tea.Program
	if *useTUI {
		model := tui.NewModel(cfg.DefaultMode, dbg, *debug)
		entries := make([]tui.DeviceEntry, len(sources))
		for i, s := range sources {
			entries[i] = tui.DeviceEntry{Name: s.Info().Name, Path: s.Info().Path}
		}
		model.Devices = entries
		program = tea.NewProgram(model, tea.WithAltScreen())
		if *debug {
			dbg.SetOutput(tui.NewLogWriter(program))
		}
		go func() {
			if _, err := program.Run(); err != nil {
				log.Fatalf("tui: %v", err)
			}
			os.Exit(0)
		}()
	}

	watcher, err := config.NewWatcher(cfgPath)
	if err != nil {
		dbg.Printf("config: hot-reload disabled: %v", err)
	}
	reloads := make(chan struct{})
	if watcher != nil {
		go func() {
			defer watcher.Close()
			for {
				if err := watcher.Wait(); err != nil {
					return
				}
				reloads <- struct{}{}
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case b := <-batches:
			actions, err := eng.OnEvents(cfg, b.device, b.events)
			if err != nil {
				dbg.Printf("engine: %v", err)
			}
			dispatch(sink, actions, program, dbg)
			reportStatus(eng, program)

		case <-timer.fired:
			actions, err := eng.OnOverrideTimeout()
			if err != nil {
				dbg.Printf("engine: override timeout: %v", err)
			}
			dispatch(sink, actions, program, dbg)
			reportStatus(eng, program)

		case <-reloads:
			next, err := config.Load(cfgPath)
			if err != nil {
				dbg.Printf("config: reload failed, keeping previous: %v", err)
				continue
			}
			cfg = next
			dbg.Printf("config: reloaded, generation=%s", cfg.GenerationID)

		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				next, err := config.Load(cfgPath)
				if err != nil {
					dbg.Printf("config: SIGHUP reload failed, keeping previous: %v", err)
					continue
				}
				cfg = next
				dbg.Printf("config: reloaded on SIGHUP, generation=%s", cfg.GenerationID)
				continue
			}
			dbg.Printf("shutting down on signal %v", sig)
			return
		}
	}
}

// resolveDevicePaths returns the explicit comma-separated list if given,
// else autodetects every keyboard/mouse-capable event device.
func resolveDevicePaths(flagValue string) []string {
	if flagValue != "" {
		parts := strings.Split(flagValue, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	all, err := device.Discover()
	if err != nil {
		return nil
	}
	var out []string
	for _, p := range all {
		if ok, err := device.IsKeyboardOrMouse(p); err == nil && ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func selectWMClient(dbg *log.Logger) engine.WMClient {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		dbg.Printf("wm: no session bus, using null client")
		return wm.NullClient{}
	}
	return dbusclient.New()
}

func dispatch(sink *uinputsink.Sink, actions []remap.Action, program *tea.Program, dbg *log.Logger) {
	if len(actions) == 0 {
		return
	}
	if err := sink.Dispatch(actions); err != nil {
		dbg.Printf("uinput: dispatch error: %v", err)
	}
	if program != nil {
		program.Send(tui.LastActionMsg{Description: describeAction(actions[len(actions)-1])})
	}
}

func describeAction(a remap.Action) string {
	switch a.Kind {
	case remap.ActionKeyEvent:
		return fmt.Sprintf("key %d value %d", a.Key.Key, a.Key.Value)
	case remap.ActionRelativeEvent:
		return fmt.Sprintf("rel %d value %d", a.Rel.Code, a.Rel.Value)
	case remap.ActionMouseMovementEventCollection:
		return fmt.Sprintf("mouse batch (%d events)", len(a.Mouse))
	case remap.ActionCommand:
		return fmt.Sprintf("launch %v", a.Command)
	case remap.ActionDelay:
		return fmt.Sprintf("delay %dms", a.Delay)
	default:
		return "passthrough"
	}
}

func reportStatus(eng *engine.Engine, program *tea.Program) {
	if program == nil {
		return
	}
	s := eng.Status()
	program.Send(tui.StatusMsg{
		Mode:          s.Mode,
		MarkSet:       s.MarkSet,
		EscapeNextKey: s.EscapeNextKey,
		OverrideDepth: s.OverrideDepth,
	})
}

// afterFuncTimer implements engine.Timer with a stdlib time.Timer,
// delivering its fire as a channel receive the main loop selects on
// rather than a callback, so the engine's OnOverrideTimeout always runs
// on the single daemon goroutine.
type afterFuncTimer struct {
	mu    sync.Mutex
	t     *time.Timer
	fired chan struct{}
}

func newAfterFuncTimer() *afterFuncTimer {
	return &afterFuncTimer{fired: make(chan struct{}, 1)}
}

func (a *afterFuncTimer) Arm(d time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.t != nil {
		a.t.Stop()
	}
	a.t = time.AfterFunc(d, func() {
		select {
		case a.fired <- struct{}{}:
		default:
		}
	})
	return nil
}

func (a *afterFuncTimer) Disarm() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.t != nil {
		a.t.Stop()
		a.t = nil
	}
	return nil
}
