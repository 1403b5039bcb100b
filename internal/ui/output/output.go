// Package output builds termenv outputs with the color rules used across the CLI.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// NoColor reports whether the user asked for uncolored output.
func NoColor() bool {
	return os.Getenv("NO_COLOR") != ""
}

// ColorProfile returns the detected terminal profile, or Ascii under NO_COLOR.
func ColorProfile() termenv.Profile {
	if NoColor() {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// ColorProfileANSI returns ANSI, or Ascii under NO_COLOR. CI logs render
// basic ANSI reliably but rarely more.
func ColorProfileANSI() termenv.Profile {
	if NoColor() {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// New creates a termenv.Output for w using the detected profile.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	return NewWithProfile(w, ColorProfile, opts...)
}

// NewWithProfile creates a termenv.Output for w using profileFn.
func NewWithProfile(w io.Writer, profileFn func() termenv.Profile, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(profileFn()),
		termenv.WithTTY(true),
	)
	return termenv.NewOutput(w, opts...)
}
