// Package wm provides WMClient implementations for the engine's
// window-manager collaborator interface. Grounded on
// original_source's client/null_client.rs.
package wm

// NullClient is the WMClient used when no compositor integration is
// configured: every query reports "unsupported" and command launches
// always fall back to the output sink's own process spawn.
type NullClient struct{}

func (NullClient) CurrentApplication() (string, bool) { return "", false }
func (NullClient) CurrentWindow() (string, bool)      { return "", false }
func (NullClient) Run([]string) (bool, error)         { return false, nil }
