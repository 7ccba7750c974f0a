// Package buildmode defines the closed set of build modes the kernel
// compiler understands.
package buildmode

import (
	"fmt"
	"strings"
)

// Mode selects optimization and instrumentation flags for a build.
// The zero value is not a valid mode.
type Mode int

const (
	Debug Mode = iota + 1
	Profile
	Release
)

var names = map[Mode]string{
	Debug:   "debug",
	Profile: "profile",
	Release: "release",
}

// All returns every valid mode in declaration order.
func All() []Mode {
	return []Mode{Debug, Profile, Release}
}

// Parse converts a mode name, case-insensitively.
func Parse(s string) (Mode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, m := range All() {
		if names[m] == want {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown build mode %q", s)
}

// Valid reports whether m is one of Debug, Profile or Release.
func (m Mode) Valid() bool {
	_, ok := names[m]
	return ok
}

func (m Mode) String() string {
	if n, ok := names[m]; ok {
		return n
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}
