// launchboard serves and queries the SpaceX launch records dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/xtxerr/launchboard/internal/cli"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	root := cli.NewRootCommand()
	root.Version = Version

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "launchboard: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
