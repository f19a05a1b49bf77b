//go:build linux

package device

import (
	"reflect"
	"testing"
)

func TestSortEventPathsNumeric(t *testing.T) {
	paths := []string{
		"/dev/input/event10",
		"/dev/input/event2",
		"/dev/input/event1",
		"/dev/input/event9",
	}
	sortEventPaths(paths)
	want := []string{
		"/dev/input/event1",
		"/dev/input/event2",
		"/dev/input/event9",
		"/dev/input/event10",
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("sortEventPaths = %v, want %v", paths, want)
	}
}

func TestSortEventPathsEmpty(t *testing.T) {
	var paths []string
	sortEventPaths(paths)
	if len(paths) != 0 {
		t.Errorf("expected empty slice to remain empty, got %v", paths)
	}
}
