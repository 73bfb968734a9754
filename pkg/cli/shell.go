package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cabforge/cab/pkg/config"
	"github.com/cabforge/cab/pkg/podman"
	"github.com/cabforge/cab/pkg/registry"
)

func newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell BUILDNAME",
		Short: "Drop into a shell in the build's latest image",
		Args:  cobra.ExactArgs(1),
		RunE:  shellCommand,
	}
}

func shellCommand(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(); err != nil {
		return err
	}
	b, err := config.LoadBuild(args[0])
	if err != nil {
		return err
	}

	pod := podman.New()
	img, err := registry.New(pod).FindLatestBuildImage(b.Name)
	if err != nil {
		return err
	}
	if img == nil {
		return fmt.Errorf("no latest image for build '%s'", b.Name)
	}
	return pod.Shell(img.ID)
}
