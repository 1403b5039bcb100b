// Package detector decides whether a run talks to a person or to a log.
package detector

import (
	"os"

	"golang.org/x/term"
)

// Mode is how build output is presented.
type Mode int

const (
	// ModeAuto defers to DetectEnvironment.
	ModeAuto Mode = iota
	// ModeInteractive runs commands in a pseudo-terminal and uses the full color profile.
	ModeInteractive
	// ModeLinear pipes command output and sticks to basic ANSI colors.
	ModeLinear
)

// String returns the flag spelling of m.
func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeLinear:
		return "linear"
	default:
		return "auto"
	}
}

// DetectEnvironment reports ModeLinear when stdout is not a terminal or a CI
// system is driving the run.
func DetectEnvironment() Mode {
	if !term.IsTerminal(int(os.Stdout.Fd())) || isCI() {
		return ModeLinear
	}
	return ModeInteractive
}

// ResolveMode applies a user override to the detected mode. Unknown values
// keep the detected mode.
func ResolveMode(detected Mode, flag string) Mode {
	switch flag {
	case "interactive", "tty":
		return ModeInteractive
	case "linear", "ci":
		return ModeLinear
	default:
		return detected
	}
}

func isCI() bool {
	ci := os.Getenv("CI")
	return ci == "true" || ci == "1"
}
