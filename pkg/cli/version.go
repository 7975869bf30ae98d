package cli

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/spf13/cobra"
)

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/Fepozopo/lunaratelier/pkg/cli.Version=...".
var Version = "0.3.0"

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lunar version",
		Args:  cobra.NoArgs,
		// no config or logger needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			suffix := ""
			if _, err := semver.ParseTolerant(Version); err != nil {
				suffix = " (development build)"
			}
			fmt.Fprintf(out(cmd), "lunar %s%s %s/%s\n", Version, suffix, runtime.GOOS, runtime.GOARCH)
		},
	}
}
