package main

import (
	"runtime/debug"
	"strings"
)

// Stamped by release builds via -ldflags "-X main.releaseVersion=...".
var releaseVersion = ""

var readBuildInfo = debug.ReadBuildInfo

// currentVersion prefers the stamped release version, then the module
// version recorded in build info. Untagged builds report "dev", suffixed
// with the commit they were built from when the toolchain recorded one.
func currentVersion() string {
	if v := strings.TrimSpace(releaseVersion); v != "" {
		return v
	}

	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	if v := strings.TrimSpace(info.Main.Version); v != "" && v != "(devel)" {
		return v
	}
	if rev := buildSetting(info, "vcs.revision"); rev != "" {
		if len(rev) > 12 {
			rev = rev[:12]
		}
		return "dev+" + rev
	}
	return "dev"
}

func buildSetting(info *debug.BuildInfo, key string) string {
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}
