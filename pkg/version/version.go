// Package version reports build information for dexosc.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build information, set with -ldflags "-X".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build information of the running binary.
type Info struct {
	Version string
	Commit  string
	Date    string
	Go      string
	OS      string
	Arch    string
}

// Get returns the current build information.
func Get() Info {
	return Info{
		Version: Format(Version),
		Commit:  Commit,
		Date:    Date,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// String renders the multi-line version report.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dexosc %s\n", i.Version)
	fmt.Fprintf(&b, "commit: %s\n", i.Commit)
	fmt.Fprintf(&b, "built: %s\n", i.Date)
	fmt.Fprintf(&b, "go: %s\n", i.Go)
	fmt.Fprintf(&b, "os/arch: %s/%s\n", i.OS, i.Arch)
	return b.String()
}

// Format adds a "v" prefix to release versions.
func Format(v string) string {
	if v == "" || v == "dev" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
