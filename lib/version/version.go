// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags at build time, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/neurobridge/lib/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

// Info returns the --version line: "0.1.0-dev (abc1234, 2026-...)".
func Info() string {
	commit, dirty, built := GitCommit, GitDirty == "true", BuildTime
	if commit == "unknown" {
		if stamp, ok := readVCSStamp(); ok {
			commit, dirty = stamp.revision, stamp.modified
			if built == "unknown" && stamp.time != "" {
				built = stamp.time
			}
		}
	}
	suffix := ""
	if dirty {
		suffix = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, commit, suffix, built)
}

// Full returns Info plus the Go toolchain and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version number.
func Short() string {
	return Version
}

type vcsStamp struct {
	revision string
	time     string
	modified bool
}

func readVCSStamp() (vcsStamp, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return vcsStamp{}, false
	}
	var stamp vcsStamp
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			stamp.revision = setting.Value
			if len(stamp.revision) > 7 {
				stamp.revision = stamp.revision[:7]
			}
		case "vcs.time":
			stamp.time = setting.Value
		case "vcs.modified":
			stamp.modified = setting.Value == "true"
		}
	}
	return stamp, stamp.revision != ""
}
