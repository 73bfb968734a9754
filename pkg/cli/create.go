package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cabforge/cab/pkg/config"
	"github.com/cabforge/cab/pkg/podman"
	"github.com/cabforge/cab/pkg/registry"
	"github.com/cabforge/cab/pkg/util/console"
	"github.com/cabforge/cab/pkg/util/files"
	"github.com/cabforge/cab/pkg/util/shell"
)

var (
	createWithDebug       bool
	createWithTests       bool
	createCloneFromRepo   string
	createCloneFromBranch string
)

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create BUILDNAME VENDOR RELEASE SOURCEDIR",
		Short: "Create a new build; does not build",
		Args:  cobra.ExactArgs(4),
		RunE:  createCommand,
	}
	cmd.Flags().BoolVar(&createWithDebug, "with-debug", false, "Build with debug symbols (increases build size)")
	cmd.Flags().BoolVar(&createWithTests, "with-tests", false, "Build with tests (increases build size)")
	cmd.Flags().StringVar(&createCloneFromRepo, "clone-from-repo", "", "Git repository to clone into SOURCEDIR")
	cmd.Flags().StringVar(&createCloneFromBranch, "clone-from-branch", "", "Git branch to clone")
	return cmd
}

func createCommand(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(); err != nil {
		return err
	}
	buildname, vendor, release := args[0], args[1], args[2]

	exists, err := config.BuildExists(buildname)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("build '%s' already exists", buildname)
	}

	reg := registry.New(podman.New())
	base, err := reg.FindBaseImage(vendor, release)
	if err != nil {
		return err
	}
	if base == nil {
		return fmt.Errorf("unable to find base image for vendor %s release %s; build a base image first", vendor, release)
	}

	sourceDir, err := filepath.Abs(args[3])
	if err != nil {
		return err
	}
	if err := prepareSources(sourceDir); err != nil {
		return err
	}

	b := &config.Build{
		Name:      buildname,
		Vendor:    vendor,
		Release:   release,
		Sources:   sourceDir,
		WithDebug: createWithDebug,
		WithTests: createWithTests,
	}
	if err := b.Save(); err != nil {
		return err
	}
	console.Infof("created build '%s' (vendor %s, release %s)", buildname, vendor, release)
	return nil
}

// prepareSources optionally clones the repository, then checks that
// sourceDir is a ceph source tree.
func prepareSources(sourceDir string) error {
	if createCloneFromBranch != "" && createCloneFromRepo == "" {
		return fmt.Errorf("--clone-from-branch requires --clone-from-repo")
	}
	if createCloneFromRepo != "" {
		exists, err := files.Exists(sourceDir)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("refusing to clone into existing directory %s", sourceDir)
		}
		args := []string{"clone"}
		if createCloneFromBranch != "" {
			args = append(args, "-b", createCloneFromBranch)
		}
		args = append(args, createCloneFromRepo, sourceDir)
		res, err := shell.Stream("git", args...)
		if err != nil {
			return err
		}
		if res.Code != 0 {
			return fmt.Errorf("git clone failed with exit status %d", res.Code)
		}
	}

	isDir, err := files.IsDir(sourceDir)
	if err != nil || !isDir {
		return fmt.Errorf("source directory %s does not exist", sourceDir)
	}
	specExists, err := files.Exists(filepath.Join(sourceDir, "ceph.spec.in"))
	if err != nil {
		return err
	}
	if !specExists {
		return fmt.Errorf("%s is not a ceph source tree", sourceDir)
	}
	return nil
}
