package cli

import (
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/cabforge/cab/pkg/config"
	"github.com/cabforge/cab/pkg/util/console"
	"github.com/cabforge/cab/pkg/util/files"
)

var (
	initInstallsDir      string
	initCcacheDir        string
	initCcacheSize       string
	initRegistry         string
	initInsecureRegistry bool
	initForce            bool
)

var ccacheSizeRegex = regexp.MustCompile(`^[0-9]+[GT]$`)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the configuration required to perform builds",
		Args:  cobra.NoArgs,
		RunE:  initCommand,
	}
	cmd.Flags().StringVar(&initInstallsDir, "installs-dir", "", "Directory holding one install tree per build (required)")
	cmd.Flags().StringVar(&initCcacheDir, "ccache-dir", "", "ccache directory, to speed up rebuilds")
	cmd.Flags().StringVar(&initCcacheSize, "ccache-size", "10G", "ccache size limit, in G or T")
	cmd.Flags().StringVar(&initRegistry, "registry", "", "Registry URL to push final images to")
	cmd.Flags().BoolVar(&initInsecureRegistry, "insecure-registry", false, "Disable TLS verification when pushing")
	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration")
	_ = cmd.MarkFlagRequired("installs-dir")
	return cmd
}

func initCommand(cmd *cobra.Command, args []string) error {
	exists, err := config.Exists()
	if err != nil {
		return err
	}
	if exists && !initForce {
		return fmt.Errorf("configuration already exists at %s, use --force to overwrite", config.Path())
	}

	installsDir, err := files.Expand(initInstallsDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(installsDir, 0o755); err != nil {
		return err
	}

	cfg := &config.Config{InstallsDir: installsDir}
	if initCcacheDir != "" {
		ccacheDir, err := files.Expand(initCcacheDir)
		if err != nil {
			return err
		}
		if !ccacheSizeRegex.MatchString(initCcacheSize) {
			return fmt.Errorf("invalid ccache size %q, expected e.g. 10G", initCcacheSize)
		}
		if err := os.MkdirAll(ccacheDir, 0o755); err != nil {
			return err
		}
		cfg.CcacheDir = ccacheDir
		cfg.CcacheSize = initCcacheSize
	}
	if initRegistry != "" {
		cfg.Registry = &config.Registry{URL: initRegistry, Insecure: initInsecureRegistry}
	}

	if err := cfg.Save(); err != nil {
		return err
	}
	console.Infof("configuration saved to %s", config.Path())
	return nil
}
