package util

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to a terminal, including Cygwin
// and MSYS pseudo terminals.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsTTY returns true if stdout is a terminal.
func IsTTY() bool {
	return IsTerminal(os.Stdout)
}

// IsInteractive returns true when both stdin and stdout are terminals, which
// the browser needs to read keys and draw.
func IsInteractive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}

// InitColor configures color output based on flags, NO_COLOR and terminal
// detection.
func InitColor(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set || !IsTTY() {
		color.NoColor = true
	}
}
