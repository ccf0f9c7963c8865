package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information, overridden with -ldflags at release time.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version information for smartedu",
		Run:   runVersion,
	}

	return cmd
}

func runVersion(*cobra.Command, []string) {
	_, _ = fmt.Fprintf(os.Stdout, "smartedu version %s\n", Version)
	_, _ = fmt.Fprintf(os.Stdout, "Build date: %s\n", BuildDate)
	_, _ = fmt.Fprintf(os.Stdout, "Git commit: %s\n", GitCommit)
}
