// Package version carries build metadata set with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/keshon/nvbot/internal/version.Version=v1.2.0 \
//	  -X github.com/keshon/nvbot/internal/version.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	AppName        = "NV Bot"
	AppDescription = "Slash-command bot for AI chat, image generation, memes and YouTube search"

	Version   = "dev"
	Commit    = ""
	BuildDate = ""
	GoVersion = runtime.Version()
)

// Release renders "v1.2.0 (2024-05-01, go1.25.0)".
func Release() string {
	date := "unknown"
	if BuildDate != "" {
		if t, err := time.Parse(time.RFC3339, BuildDate); err == nil {
			date = t.Format("2006-01-02")
		} else {
			date = "invalid date"
		}
	}
	v := Version
	if Commit != "" {
		v += "+" + shortCommit(Commit)
	}
	return fmt.Sprintf("%s (%s, %s)", v, date, GoVersion)
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}
