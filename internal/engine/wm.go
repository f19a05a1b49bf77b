package engine

import "time"

// WMClient is the window-manager collaborator the engine consults for
// application/window filters. Implementations may block briefly on IPC
// but must not panic; failure is reported as ok=false and the engine
// caches an empty string for the remainder of the batch.
type WMClient interface {
	CurrentApplication() (name string, ok bool)
	CurrentWindow() (title string, ok bool)
	// Run attempts to execute cmd natively (e.g. via a compositor IPC
	// "spawn" call). ok=false means the caller should fall back to
	// spawning the process itself.
	Run(cmd []string) (ok bool, err error)
}

// Timer is a monotonic one-shot exposed to the caller's event loop,
// which must deliver an OverrideTimeout event when it fires.
type Timer interface {
	Arm(d time.Duration) error
	Disarm() error
}
