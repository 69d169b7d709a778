package main

import (
	"runtime/debug"
	"strings"
)

// version is set with -ldflags "-X main.version=v1.2.3" for releases.
var version = "dev"

var readBuildInfo = debug.ReadBuildInfo

// currentVersion prefers the linked version, then the module version, then
// "dev" tagged with the VCS revision a local build was made from.
func currentVersion() string {
	if v := strings.TrimSpace(version); v != "" && v != "dev" {
		return v
	}
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	if mv := strings.TrimSpace(info.Main.Version); mv != "" && mv != "(devel)" {
		return mv
	}

	var revision string
	var modified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if revision == "" {
		return "dev"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified {
		revision += "-dirty"
	}
	return "dev+" + revision
}
