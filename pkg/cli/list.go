package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cabforge/cab/pkg/config"
	"github.com/cabforge/cab/pkg/util/console"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered builds",
		Args:  cobra.NoArgs,
		RunE:  listCommand,
	}
}

func listCommand(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(); err != nil {
		return err
	}
	names, err := config.ListBuilds()
	if err != nil {
		return err
	}
	for _, name := range names {
		b, err := config.LoadBuild(name)
		if err != nil {
			return err
		}
		console.Output(fmt.Sprintf("- %s", b.Name))
		console.Output(fmt.Sprintf("    vendor:  %s", b.Vendor))
		console.Output(fmt.Sprintf("    release: %s", b.Release))
		console.Output(fmt.Sprintf("    sources: %s", b.Sources))
	}
	return nil
}
