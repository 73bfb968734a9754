package cli

import (
	"github.com/spf13/cobra"

	"github.com/cabforge/cab/pkg/build"
	"github.com/cabforge/cab/pkg/config"
)

var (
	buildSkipCompile bool
	buildSkipImage   bool
	buildNoPush      bool
)

func newBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build BUILDNAME",
		Short: "Compile a build and package it as a container image",
		Args:  cobra.ExactArgs(1),
		RunE:  buildCommand,
	}
	cmd.Flags().BoolVar(&buildSkipCompile, "skip-compile", false, "Skip the compile phase, package the existing install tree")
	cmd.Flags().BoolVar(&buildSkipImage, "skip-image", false, "Skip the image phase, only compile")
	cmd.Flags().BoolVar(&buildNoPush, "no-push", false, "Do not push the final image, even with a registry configured")
	return cmd
}

func buildCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	b, err := config.LoadBuild(args[0])
	if err != nil {
		return err
	}
	return build.New(cfg, b).Run(build.Options{
		SkipCompile: buildSkipCompile,
		SkipImage:   buildSkipImage,
		NoPush:      buildNoPush,
	})
}
