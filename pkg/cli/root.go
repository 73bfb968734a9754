package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cabforge/cab/pkg/global"
	"github.com/cabforge/cab/pkg/util/console"
)

func NewRootCommand() (*cobra.Command, error) {
	rootCmd := cobra.Command{
		Use:     "cab",
		Short:   "Container assisted builds",
		Long:    "Compile a source tree inside a builder container and package the result as versioned, incrementally-layered container images.",
		Version: fmt.Sprintf("%s (built %s)", global.Version, global.BuildTime),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if global.Debug {
				console.SetLevel(console.DebugLevel)
			}
			cmd.SilenceUsage = true
		},
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&global.Debug, "debug", "d", false, "Debug output")

	rootCmd.AddCommand(
		newInitCommand(),
		newCreateCommand(),
		newBuildCommand(),
		newDestroyCommand(),
		newListCommand(),
		newImagesCommand(),
		newShellCommand(),
	)

	return &rootCmd, nil
}
