package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Terminal decides whether prompts and animations may be shown.
type Terminal struct {
	forced *bool
	in     *os.File
}

// NewTerminal creates a Terminal that inspects os.Stdin.
func NewTerminal() *Terminal {
	return &Terminal{in: os.Stdin}
}

// IsHeadless returns true when the UI must not prompt or animate.
// ForceHeadless overrides TTY detection.
func (t *Terminal) IsHeadless() bool {
	if t.forced != nil {
		return *t.forced
	}
	if t.in == nil {
		return true
	}
	fd := t.in.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

// ForceHeadless overrides TTY detection. Pass true to force headless mode,
// or false to force interactive mode regardless of TTY state.
func (t *Terminal) ForceHeadless(force bool) {
	t.forced = &force
}

// ClearForce reverts to automatic TTY detection.
func (t *Terminal) ClearForce() {
	t.forced = nil
}
