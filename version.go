package tagcollate

import (
	_ "embed"
	"strings"
)

//go:embed version.txt
var version string

// Version is the module's release version, read from version.txt at
// build time.
var Version = strings.TrimSpace(version)

// Name is used as the default config directory/env-prefix name by the
// CLI.
var Name = "tagcollate"
