package app

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Version is the application version, overridden at build time with
// -ldflags "-X github.com/agbru/fizzcalc/internal/app.Version=v1.2.3".
var Version = "dev"

// HasVersionFlag reports whether args request the version.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--version", "-version", "-V":
			return true
		}
	}
	return false
}

// PrintVersion writes the version banner to out.
func PrintVersion(out io.Writer) {
	version := Version
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	fmt.Fprintf(out, "fizzcalc %s (%s, %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
