// Command clientdesk runs the client desk API, scheduler and tools.
package main

import (
	"os"

	"github.com/custodia-labs/clientdesk/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
