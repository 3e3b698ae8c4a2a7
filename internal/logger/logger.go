package logger

import (
	"os"

	"github.com/fatih/color"
)

// Colored status printers. Error writes to stderr so piped output stays clean;
// everything else goes to stdout.
var (
	// Info logs progress messages in cyan.
	Info = color.New(color.FgCyan).PrintfFunc()

	// Success logs completed steps in green.
	Success = color.New(color.FgGreen).PrintfFunc()

	// Warn logs non-fatal problems in yellow.
	Warn = color.New(color.FgYellow).PrintfFunc()

	// Error logs failures in red on the error stream.
	Error = func(format string, a ...any) {
		errorf(os.Stderr, format, a...)
	}

	// Debug is a no-op unless enabled via Init.
	Debug func(format string, a ...any) = func(format string, a ...any) {}
)

var errorf = color.New(color.FgRed).FprintfFunc()

// Init enables or disables debug output.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgMagenta).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
