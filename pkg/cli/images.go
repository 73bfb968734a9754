package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cabforge/cab/pkg/config"
	"github.com/cabforge/cab/pkg/podman"
	"github.com/cabforge/cab/pkg/registry"
	"github.com/cabforge/cab/pkg/util/console"
)

func newImagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "images BUILDNAME",
		Short: "List a build's images",
		Args:  cobra.ExactArgs(1),
		RunE:  imagesCommand,
	}
}

func imagesCommand(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(); err != nil {
		return err
	}
	b, err := config.LoadBuild(args[0])
	if err != nil {
		return err
	}

	reg := registry.New(podman.New())
	images, err := reg.FindBuildImages(b.Name)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		console.Infof("no images for build '%s'", b.Name)
		return nil
	}
	for _, img := range images {
		marker := ""
		if img.HasTag("latest") {
			marker = " (latest)"
		}
		console.Output(fmt.Sprintf("- id: %s (%s)%s", img.ShortID(), img.SizeString(), marker))
		for _, n := range img.Names {
			console.Output(fmt.Sprintf("    - name: %s", n))
		}
		console.Output(fmt.Sprintf("    - created: %s", img.Age()))
	}
	return nil
}
