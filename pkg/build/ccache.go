package build

import (
	"os"
	"os/exec"
	"strings"

	"github.com/cabforge/cab/pkg/config"
	"github.com/cabforge/cab/pkg/util/console"
)

// ensureCcache creates the configured ccache directory and applies the
// size limit. Best-effort: a build works without a cache, it is just
// slower, so failures only warn.
func ensureCcache(cfg *config.Config) {
	if cfg.CcacheDir == "" {
		return
	}
	if err := os.MkdirAll(cfg.CcacheDir, 0o755); err != nil {
		console.Warnf("failed to create ccache directory %s: %s", cfg.CcacheDir, err)
		return
	}
	if cfg.CcacheSize == "" {
		return
	}
	cmd := exec.Command("ccache", "-M", cfg.CcacheSize)
	cmd.Env = append(os.Environ(), "CCACHE_DIR="+cfg.CcacheDir)
	console.Debug("$ " + strings.Join(cmd.Args, " "))
	if out, err := cmd.CombinedOutput(); err != nil {
		console.Warnf("failed to set ccache size: %s", strings.TrimSpace(string(out)))
	}
}
