package main

import (
	"fmt"
	"runtime"
)

var (
	version = "dev"
	commit  = "unknown"
)

func versionString() string {
	return fmt.Sprintf("%s (commit %s, %s, %s/%s)", version, commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
