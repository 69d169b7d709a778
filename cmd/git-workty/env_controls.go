package main

import (
	"os"
	"strings"
)

func envFlagEnabled(name string) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// NO_COLOR disables colour whatever its value, as long as it is set.
func noColorEnv() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

// stdinInteractive is swapped in tests.
var stdinInteractive = func() bool { return isInteractiveTerminal(os.Stdin) }

func isInteractiveTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
