package utils

import (
	"runtime/debug"
	"strings"
)

// version is injected with -ldflags "-X github.com/gnomegl/githunt/internal/utils.version=..."
var version string

// GetVersion returns the injected version, else the module version from the
// build info, without a leading "v". Local builds report "dev".
func GetVersion() string {
	v := version
	if v == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		} else {
			v = "dev"
		}
	}
	return strings.TrimPrefix(v, "v")
}
