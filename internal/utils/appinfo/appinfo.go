// Package appinfo reports build information
package appinfo

import (
	"os"
	"runtime/debug"
)

// GetVersion returns the application version.
// VERSION wins, then the module version, then the VCS revision.
func GetVersion() string {
	if version := os.Getenv("VERSION"); version != "" {
		return version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "0.0.0-unknown"
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			if len(setting.Value) > 12 {
				return setting.Value[:12]
			}
			return setting.Value
		}
	}

	return "0.0.0-unknown"
}
