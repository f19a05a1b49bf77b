package remap

import (
	"path/filepath"
	"regexp"
	"strings"
)

// StringMatcher tests a single string (application id, window title) for
// a match. Grounded on original_source's ApplicationMatcher: a bare
// string matches either literally (if it contains a dot, e.g. a
// "class.name" wm class) or by trailing name segment, while a
// /regex/-delimited string compiles to a regular expression.
type StringMatcher interface {
	Matches(s string) bool
}

type literalMatcher string

func (m literalMatcher) Matches(s string) bool { return string(m) == s }

type nameMatcher string

func (m nameMatcher) Matches(s string) bool {
	if pos := strings.LastIndexByte(s, '.'); pos >= 0 {
		return string(m) == s[pos+1:]
	}
	return string(m) == s
}

type regexMatcher struct{ re *regexp.Regexp }

func (m regexMatcher) Matches(s string) bool { return m.re.MatchString(s) }

// ParseStringMatcher builds a StringMatcher from a config string. A
// pattern wrapped in slashes, e.g. "/^Firefox.*$/", compiles to a
// regular expression; a pattern containing a dot matches literally;
// anything else matches only the trailing dot-delimited segment.
func ParseStringMatcher(pattern string) (StringMatcher, error) {
	if len(pattern) >= 2 && pattern[0] == '/' && pattern[len(pattern)-1] == '/' {
		re, err := regexp.Compile(pattern[1 : len(pattern)-1])
		if err != nil {
			return nil, err
		}
		return regexMatcher{re}, nil
	}
	if strings.ContainsRune(pattern, '.') {
		return literalMatcher(pattern), nil
	}
	return nameMatcher(pattern), nil
}

// OnlyNot is an only/not string-matcher filter: at most one of Only or
// Not is set by the config loader. Only matches if any matcher matches;
// Not matches if every matcher fails to match.
type OnlyNot struct {
	Only []StringMatcher
	Not  []StringMatcher
}

// Matches evaluates the only/not filter against s.
func (f *OnlyNot) Matches(s string) bool {
	if f == nil {
		return true
	}
	if f.Only != nil {
		for _, m := range f.Only {
			if m.Matches(s) {
				return true
			}
		}
		return false
	}
	if f.Not != nil {
		for _, m := range f.Not {
			if m.Matches(s) {
				return false
			}
		}
		return true
	}
	return true
}

// DeviceMatch is an only/not glob filter over InputDeviceInfo.Name,
// grounded on original_source's config/device.rs.
type DeviceMatch struct {
	Only []string
	Not  []string
}

// Matches evaluates the device filter against info.
func (f *DeviceMatch) Matches(info InputDeviceInfo) bool {
	if f == nil {
		return true
	}
	if f.Only != nil {
		for _, pattern := range f.Only {
			if ok, _ := filepath.Match(pattern, info.Name); ok {
				return true
			}
		}
		return false
	}
	if f.Not != nil {
		for _, pattern := range f.Not {
			if ok, _ := filepath.Match(pattern, info.Name); ok {
				return false
			}
		}
		return true
	}
	return true
}

// Filter bundles the optional application/window/device/mode
// restrictions shared by modmap and keymap entries.
type Filter struct {
	Application *OnlyNot
	Window      *OnlyNot
	Device      *DeviceMatch
	Modes       []string // nil/empty means "all modes"
}

// AllowsMode reports whether mode is permitted by this filter.
func (f Filter) AllowsMode(mode string) bool {
	if len(f.Modes) == 0 {
		return true
	}
	for _, m := range f.Modes {
		if m == mode {
			return true
		}
	}
	return false
}
