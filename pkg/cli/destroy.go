package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cabforge/cab/pkg/config"
	"github.com/cabforge/cab/pkg/podman"
	"github.com/cabforge/cab/pkg/registry"
	"github.com/cabforge/cab/pkg/util/console"
)

var (
	destroyRemoveInstall bool
	destroyRemoveImages  bool
)

func newDestroyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destroy BUILDNAME",
		Short: "Remove a build's configuration, and optionally its install tree and images",
		Args:  cobra.ExactArgs(1),
		RunE:  destroyCommand,
	}
	cmd.Flags().BoolVar(&destroyRemoveInstall, "remove-install", false, "Also remove the build's install tree")
	cmd.Flags().BoolVar(&destroyRemoveImages, "remove-images", false, "Also remove the build's images")
	return cmd
}

func destroyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	b, err := config.LoadBuild(args[0])
	if err != nil {
		return err
	}

	if destroyRemoveImages {
		reg := registry.New(podman.New())
		images, err := reg.FindBuildImages(b.Name)
		if err != nil {
			return err
		}
		for _, img := range images {
			if err := reg.RemoveImage(img); err != nil {
				// keep going; the config removal below still
				// makes the build unknown to cab.
				console.Errorf("%s", err)
			}
		}
	}
	if destroyRemoveInstall {
		if err := os.RemoveAll(cfg.InstallDirFor(b.Name)); err != nil {
			return err
		}
	}
	if err := config.RemoveBuild(b.Name); err != nil {
		return err
	}
	console.Infof("destroyed build '%s'", b.Name)
	return nil
}
