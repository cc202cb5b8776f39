// Package version holds the release version embedded at build time.
package version

import (
	_ "embed"
	"strings"
)

// AppName is the program name shown in the header and by the CLI.
const AppName = "mvu"

//go:embed VERSION
var versionContent string

// Get returns the current version, with whitespace trimmed.
func Get() string {
	return strings.TrimSpace(versionContent)
}
