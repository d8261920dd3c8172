package main

import (
	"fmt"
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

func hyperlinksDisabled() bool {
	return envFlagEnabled("ARBO_DISABLE_HYPERLINKS")
}

func testModeEnabled() bool {
	return envFlagEnabled("ARBO_TEST_MODE")
}

func debugEnabled() bool {
	return envFlagEnabled("ARBO_DEBUG")
}

func debugf(format string, args ...any) {
	if !debugEnabled() {
		return
	}
	fmt.Fprintf(os.Stderr, "arbo debug: "+format+"\n", args...)
}
