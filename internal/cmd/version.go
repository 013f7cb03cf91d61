package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		u := newUI()

		u.Print(u.Header("Payment Gateway Incremental Data Generator"))
		u.Print("")
		u.Print(u.KeyValue("Version", Version))
		u.Print(u.KeyValue("Git Commit", GitCommit))
		u.Print(u.KeyValue("Built", BuildDate))
		u.Print(u.KeyValue("Go Version", runtime.Version()))
		u.Print(u.KeyValue("OS/Arch", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = Version
}
